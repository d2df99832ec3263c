package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func itemData() map[string]any {
	return map[string]any{
		"user":   map[string]any{"name": "alice", "id": 7},
		"amount": 12.5,
		"tags":   []any{"a", "b"},
	}
}

func TestResolveParamValueJsonPathKeepsType(t *testing.T) {
	require.Equal(t, "alice", ResolveParamValue(itemData(), "$.user.name"))
	require.Equal(t, 12.5, ResolveParamValue(itemData(), "$.amount"))
}

func TestResolveParamValueUnresolvablePathIsNil(t *testing.T) {
	require.Nil(t, ResolveParamValue(itemData(), "$.missing.field"))
}

func TestResolveParamValueInterpolatesTokens(t *testing.T) {
	resolved := ResolveParamValue(itemData(), "user {$.user.name} spent {$.amount}")
	require.Equal(t, "user alice spent 12.5", resolved)
}

func TestResolveParamValueLeavesPlainStringsAlone(t *testing.T) {
	require.Equal(t, "no expressions here", ResolveParamValue(itemData(), "no expressions here"))
}

func TestResolveParamValueUnresolvableTokenKeptVerbatim(t *testing.T) {
	resolved := ResolveParamValue(itemData(), "value: {$.missing}")
	require.Equal(t, "value: {$.missing}", resolved)
}

func TestResolveParamValueRecursesIntoMapsAndLists(t *testing.T) {
	value := map[string]any{
		"who":  "$.user.name",
		"list": []any{"$.amount", "static"},
		"keep": 42,
	}
	resolved := ResolveParamValue(itemData(), value).(map[string]any)
	require.Equal(t, "alice", resolved["who"])
	require.Equal(t, []any{12.5, "static"}, resolved["list"])
	require.Equal(t, 42, resolved["keep"])
}

func TestResolveParamsResolvesEveryValue(t *testing.T) {
	resolved := ResolveParams(itemData(), map[string]any{
		"name":  "$.user.name",
		"label": "id-{$.user.id}",
	})
	require.Equal(t, "alice", resolved["name"])
	require.Equal(t, "id-7", resolved["label"])
}
