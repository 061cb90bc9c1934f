package baseline

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/probatest/internal/domain/covariate"
)

// yamlDoc mirrors the on-disk baseline/spec format from spec.md §6. A
// CovariateProfile is rendered as key -> string rather than the tagged
// union, since the on-disk format only needs the rendered content for
// human review; the selector always works from hashes and the live
// resolved profile, never from a re-parsed Value.
type yamlDoc struct {
	SchemaVersion    string            `yaml:"schemaVersion"`
	UseCaseID        string            `yaml:"useCaseId"`
	ExperimentMethod string            `yaml:"experimentMethod"`
	GeneratedAt      string            `yaml:"generatedAt"`
	Execution        yamlExecution     `yaml:"execution"`
	Statistics       yamlStatistics    `yaml:"statistics"`
	Cost             yamlCost          `yaml:"cost"`
	CovariateProfile map[string]string `yaml:"covariateProfile"`
	FootprintHash    string            `yaml:"footprintHash"`
	CovariateValueHashes []string      `yaml:"covariateValueHashes"`
	ContentFingerprint string          `yaml:"contentFingerprint"`

	Approval     *yamlApproval     `yaml:"approval,omitempty"`
	Requirements *yamlRequirements `yaml:"requirements,omitempty"`
}

type yamlExecution struct {
	SamplesPlanned    int    `yaml:"samplesPlanned"`
	SamplesExecuted   int    `yaml:"samplesExecuted"`
	TerminationReason string `yaml:"terminationReason"`
}

type yamlStatistics struct {
	Observed             float64    `yaml:"observed"`
	StandardError        float64    `yaml:"standardError"`
	ConfidenceInterval95 [2]float64 `yaml:"confidenceInterval95"`
	Successes            int       `yaml:"successes"`
	Failures             int       `yaml:"failures"`
}

type yamlCost struct {
	TotalTimeMs        int64   `yaml:"totalTimeMs"`
	AvgTimePerSampleMs float64 `yaml:"avgTimePerSampleMs"`
	TotalTokens        int64   `yaml:"totalTokens"`
	AvgTokensPerSample float64 `yaml:"avgTokensPerSample"`
}

type yamlApproval struct {
	ApprovedAt string `yaml:"approvedAt"`
	ApprovedBy string `yaml:"approvedBy"`
	Notes      string `yaml:"notes"`
	Version    string `yaml:"version"`
}

type yamlRequirements struct {
	MinPassRate     float64 `yaml:"minPassRate"`
	SuccessCriteria string  `yaml:"successCriteria"`
	ThresholdOrigin string  `yaml:"thresholdOrigin"`
}

func toYAMLDoc(b *Baseline) yamlDoc {
	profile := make(map[string]string, len(b.CovariateProfile))
	for k, v := range b.CovariateProfile {
		profile[k] = v.Render()
	}
	return yamlDoc{
		SchemaVersion:    b.SchemaVersion,
		UseCaseID:        b.UseCaseID,
		ExperimentMethod: b.ExperimentMethod,
		GeneratedAt:      b.GeneratedAt.UTC().Format(time.RFC3339),
		Execution: yamlExecution{
			SamplesPlanned:    b.SamplesExecuted, // planned==executed unless a non-MEASURE caller trims it
			SamplesExecuted:   b.SamplesExecuted,
			TerminationReason: b.TerminationReason,
		},
		Statistics: yamlStatistics{
			Observed:             b.Statistics.Observed,
			StandardError:        b.Statistics.StandardError,
			ConfidenceInterval95: b.Statistics.ConfidenceInterval95,
			Successes:            b.Successes,
			Failures:             b.Failures,
		},
		Cost: yamlCost{
			TotalTimeMs:        b.Cost.TotalTimeMs,
			AvgTimePerSampleMs: b.Cost.AvgTimePerSampleMs,
			TotalTokens:        b.Cost.TotalTokens,
			AvgTokensPerSample: b.Cost.AvgTokensPerSample,
		},
		CovariateProfile:     profile,
		FootprintHash:        b.FootprintHash,
		CovariateValueHashes: b.CovariateValueHashes,
		ContentFingerprint:   b.ContentFingerprint,
	}
}

func fromYAMLDoc(doc yamlDoc) (*Baseline, error) {
	generatedAt, err := time.Parse(time.RFC3339, doc.GeneratedAt)
	if err != nil {
		return nil, err
	}
	profile := make(covariate.Profile, len(doc.CovariateProfile))
	for k, v := range doc.CovariateProfile {
		profile[k] = covariate.String(v)
	}
	return &Baseline{
		SchemaVersion:    doc.SchemaVersion,
		UseCaseID:        doc.UseCaseID,
		ExperimentMethod: doc.ExperimentMethod,
		GeneratedAt:      generatedAt,
		SamplesExecuted:  doc.Execution.SamplesExecuted,
		TerminationReason: doc.Execution.TerminationReason,
		Successes:        doc.Statistics.Successes,
		Failures:         doc.Statistics.Failures,
		Statistics: ObservedStatistics{
			Observed:             doc.Statistics.Observed,
			StandardError:        doc.Statistics.StandardError,
			ConfidenceInterval95: doc.Statistics.ConfidenceInterval95,
			Successes:            doc.Statistics.Successes,
			Failures:             doc.Statistics.Failures,
		},
		Cost: CostStatistics{
			TotalTimeMs:        doc.Cost.TotalTimeMs,
			AvgTimePerSampleMs: doc.Cost.AvgTimePerSampleMs,
			TotalTokens:        doc.Cost.TotalTokens,
			AvgTokensPerSample: doc.Cost.AvgTokensPerSample,
		},
		CovariateProfile:     profile,
		FootprintHash:        doc.FootprintHash,
		CovariateValueHashes: doc.CovariateValueHashes,
		ContentFingerprint:   doc.ContentFingerprint,
	}, nil
}

// MarshalYAML renders a Baseline to its canonical on-disk form.
func MarshalYAML(b *Baseline) ([]byte, error) {
	return yaml.Marshal(toYAMLDoc(b))
}

// UnmarshalYAML parses a Baseline from its canonical on-disk form.
func UnmarshalYAML(data []byte) (*Baseline, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return fromYAMLDoc(doc)
}

// MarshalSpecYAML renders a spec: the baseline document plus approval and
// requirements sections (spec.md §6).
func MarshalSpecYAML(s *ExecutionSpecification) ([]byte, error) {
	doc := toYAMLDoc(&s.Baseline)
	doc.ContentFingerprint = s.ContentFingerprint
	doc.Approval = &yamlApproval{
		ApprovedAt: s.ApprovedAt.UTC().Format(time.RFC3339),
		ApprovedBy: s.ApprovedBy,
		Notes:      s.ApprovalNotes,
		Version:    s.Version,
	}
	doc.Requirements = &yamlRequirements{
		SuccessCriteria: s.SuccessCriteria,
		ThresholdOrigin: s.ThresholdOrigin,
	}
	return yaml.Marshal(doc)
}

// UnmarshalSpecYAML parses a spec document.
func UnmarshalSpecYAML(data []byte) (*ExecutionSpecification, error) {
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	b, err := fromYAMLDoc(doc)
	if err != nil {
		return nil, err
	}
	spec := &ExecutionSpecification{Baseline: *b, ContentFingerprint: doc.ContentFingerprint}
	if doc.Approval != nil {
		approvedAt, err := time.Parse(time.RFC3339, doc.Approval.ApprovedAt)
		if err != nil {
			return nil, err
		}
		spec.ApprovedAt = approvedAt
		spec.ApprovedBy = doc.Approval.ApprovedBy
		spec.ApprovalNotes = doc.Approval.Notes
		spec.Version = doc.Approval.Version
	}
	if doc.Requirements != nil {
		spec.SuccessCriteria = doc.Requirements.SuccessCriteria
		spec.ThresholdOrigin = doc.Requirements.ThresholdOrigin
	}
	return spec, nil
}
