package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile("{(.*?)}")

// ResolveParamValue resolves one configured parameter value against the json
// payload of an input item. A bare "$..." string is a jsonpath lookup whose
// typed result is returned as is; "{$...}" tokens embedded in a longer string
// are interpolated textually. Maps and lists resolve element wise.
func ResolveParamValue(itemData map[string]any, value any) any {
	switch v := value.(type) {
	case string:
		if strings.HasPrefix(v, "$") {
			resolved, err := jsonpath.JsonPathLookup(itemData, v)
			if err != nil {
				return nil
			}
			return resolved
		}
		return interpolateTokens(itemData, v)
	case map[string]any:
		return ResolveParams(itemData, v)
	case []any:
		return resolveList(itemData, v)
	default:
		return value
	}
}

// ResolveParams resolves every value of a parameter map against item data.
func ResolveParams(itemData map[string]any, params map[string]any) map[string]any {
	output := make(map[string]any, len(params))
	for k, v := range params {
		output[k] = ResolveParamValue(itemData, v)
	}
	return output
}

func resolveList(itemData map[string]any, list []any) []any {
	output := make([]any, 0, len(list))
	for _, v := range list {
		output = append(output, ResolveParamValue(itemData, v))
	}
	return output
}

func interpolateTokens(itemData map[string]any, value string) string {
	tokens := tokenPattern.FindAllString(value, -1)
	if len(tokens) == 0 {
		return value
	}
	result := value
	for _, token := range tokens {
		expr := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
		if !strings.HasPrefix(expr, "$") {
			continue
		}
		resolved, err := jsonpath.JsonPathLookup(itemData, expr)
		if err != nil {
			continue
		}
		result = strings.ReplaceAll(result, token, fmt.Sprintf("%v", resolved))
	}
	return result
}
