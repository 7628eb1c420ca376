package governance

import (
	"context"
	"testing"

	"github.com/rahul/planweave/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	res, err := engine.Evaluate(ctx, Request{StepID: "s1", Kind: plan.KindAPICall})
	require.NoError(t, err)
	assert.Equal(t, EffectAllow, res.Effect)
	assert.True(t, res.Allowed())

	engine.DenyKind(plan.KindAPICall)
	res, err = engine.Evaluate(ctx, Request{StepID: "s1", Kind: plan.KindAPICall})
	require.NoError(t, err)
	assert.Equal(t, EffectDeny, res.Effect)
	assert.False(t, res.Allowed())
	assert.Contains(t, res.Reason, "api_call")
}

func TestDefaultPolicyEngine_Params(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	require.NoError(t, engine.DenyParams(`rm\s+-rf`))

	step := plan.StepSpec{
		StepID: "clean",
		Type:   plan.KindFileOperation,
		Params: map[string]any{"command": "rm -rf /tmp/x"},
	}
	res, err := engine.Evaluate(context.Background(), RequestForStep("run", step))
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	step.Params = map[string]any{"command": "ls"}
	res, err = engine.Evaluate(context.Background(), RequestForStep("run", step))
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestFromRules(t *testing.T) {
	engine, err := FromRules([]string{"API调用", "file"}, []string{"secret"})
	require.NoError(t, err)
	assert.True(t, engine.DeniedKinds[plan.KindAPICall])
	assert.True(t, engine.DeniedKinds[plan.KindFileOperation])
	assert.Len(t, engine.DeniedRegex, 1)

	_, err = FromRules(nil, []string{"("})
	assert.Error(t, err)
}
