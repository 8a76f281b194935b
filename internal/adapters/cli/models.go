package cli

// modelAliases maps full model identifiers to the short aliases the CLI
// accepts. Unknown identifiers pass through unchanged so new models work
// without a code change.
var modelAliases = map[string]string{
	"claude-opus-4-20250514":     "opus",
	"claude-sonnet-4-20250514":   "sonnet",
	"claude-3-7-sonnet-20250219": "sonnet",
	"claude-3-5-sonnet-20241022": "sonnet",
	"claude-3-5-sonnet-20240620": "sonnet",
	"claude-3-5-haiku-20241022":  "haiku",
	"claude-3-opus-20240229":     "opus",
	"claude-3-sonnet-20240229":   "sonnet",
	"claude-3-haiku-20240307":    "haiku",
}

// resolveModelAlias maps a model identifier to its CLI alias.
func resolveModelAlias(model string) string {
	if alias, ok := modelAliases[model]; ok {
		return alias
	}
	return model
}
