package operations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedStep struct{ id string }

func (s namedStep) ID() string                               { return s.id }
func (s namedStep) Name() string                             { return "step " + s.id }
func (s namedStep) Validate(*RunState) error                 { return nil }
func (s namedStep) Execute(context.Context, *RunState) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{StepIDConfig, StepIDFetch, StepIDClassify, StepIDRender, StepIDDeliver} {
		require.NoError(t, r.Register(namedStep{id: id}))
	}

	assert.Equal(t, 5, r.Count())
	var ids []string
	for _, s := range r.List() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{"config", "fetch", "classify", "render", "deliver"}, ids)
}

func TestRegistryRejectsInvalidSteps(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(namedStep{}))

	require.NoError(t, r.Register(namedStep{id: "fetch"}))
	assert.Error(t, r.Register(namedStep{id: "fetch"}))
	assert.Equal(t, 1, r.Count())
}
