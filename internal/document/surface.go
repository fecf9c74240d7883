package document

// Surface is the fixed set of library functions bound into snippet scope,
// grouped the way they are destructured in the generated document
var Surface = [][]string{
	{"pipe", "fork", "assign"},
	{"tap", "tryCatch", "switchCase"},
	{"map", "filter", "reduce", "transform", "flatMap"},
	{"any", "all", "and", "or", "not"},
	{"eq", "gt", "lt", "gte", "lte"},
	{"get", "pick", "omit"},
}

// Names returns the bound function names in declaration order
func Names() []string {
	var names []string
	for _, group := range Surface {
		names = append(names, group...)
	}
	return names
}
