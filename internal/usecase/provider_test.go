package usecase

import (
	"errors"
	"testing"
)

type sampleUseCase struct {
	Name string
}

func TestReflectiveProvider_ConstructsZeroValue(t *testing.T) {
	p := NewReflectiveProvider()
	p.Register("checkout-flow", sampleUseCase{})

	inst, err := p.GetInstance("checkout-flow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uc, ok := inst.(sampleUseCase)
	if !ok {
		t.Fatalf("expected sampleUseCase, got %T", inst)
	}
	if uc.Name != "" {
		t.Fatalf("expected zero-value instance, got %+v", uc)
	}
}

func TestReflectiveProvider_UnregisteredTypeErrors(t *testing.T) {
	p := NewReflectiveProvider()
	_, err := p.GetInstance("unknown")
	if err == nil {
		t.Fatal("expected an error for unregistered type id")
	}
}

func TestFactoryProvider_InvokesRegisteredFactory(t *testing.T) {
	p := NewFactoryProvider()
	p.Register("checkout-flow", func() (any, error) {
		return sampleUseCase{Name: "built"}, nil
	})

	inst, err := p.GetInstance("checkout-flow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uc := inst.(sampleUseCase)
	if uc.Name != "built" {
		t.Fatalf("expected factory-built instance, got %+v", uc)
	}
}

func TestFactoryProvider_PropagatesFactoryError(t *testing.T) {
	p := NewFactoryProvider()
	boom := errors.New("boom")
	p.Register("checkout-flow", func() (any, error) { return nil, boom })

	_, err := p.GetInstance("checkout-flow")
	if !errors.Is(err, boom) {
		t.Fatalf("expected factory error to propagate, got %v", err)
	}
}
