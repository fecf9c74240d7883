package sandbox

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

var ErrUnresolvedModule = errors.New("failed to resolve module specifier")

// importRe matches a static import statement on its own line:
//
//	import rubico from 'url'
//	import * as rubico from 'url'
//	import { pipe, map as mapping } from 'url'
//	import 'url'
var importRe = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(?:([^'";\n]+?)[ \t]+from[ \t]+)?['"]([^'"\n]+)['"][ \t]*;?[ \t]*$`)

// clauseRe splits an import clause into its default, namespace and named parts
var clauseRe = regexp.MustCompile(`^\s*(?:([A-Za-z_$][\w$]*)\s*,?\s*)?(?:\*\s*as\s+([A-Za-z_$][\w$]*)|\{([^}]*)\})?\s*$`)

// linker resolves module specifiers for a single load. Every specifier is
// instantiated at most once and bound to a hidden global.
type linker struct {
	vm      *goja.Runtime
	modules map[string]ModuleFunc
	bound   map[string]string
}

func newLinker(vm *goja.Runtime, modules map[string]ModuleFunc) *linker {
	return &linker{
		vm:      vm,
		modules: modules,
		bound:   make(map[string]string),
	}
}

// link rewrites the import statements of a module script into bindings and
// wraps the body in a strict function scope, as module code does not share
// top-level declarations with other scripts
func (l *linker) link(source string) (string, error) {
	var linkErr error

	body := importRe.ReplaceAllStringFunc(source, func(stmt string) string {
		if linkErr != nil {
			return stmt
		}
		m := importRe.FindStringSubmatch(stmt)
		clause, specifier := m[1], m[2]

		global, err := l.resolve(specifier)
		if err != nil {
			linkErr = err
			return stmt
		}
		binding, err := bindingFor(clause, global)
		if err != nil {
			linkErr = err
			return stmt
		}
		return binding
	})
	if linkErr != nil {
		return "", linkErr
	}

	return "(function () {\n'use strict';\n" + body + "\n})();\n", nil
}

func (l *linker) resolve(specifier string) (string, error) {
	if global, ok := l.bound[specifier]; ok {
		return global, nil
	}

	fn, ok := l.modules[specifier]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnresolvedModule, specifier)
	}
	namespace, err := fn(l.vm)
	if err != nil {
		return "", fmt.Errorf("failed to instantiate module %q: %w", specifier, err)
	}

	global := fmt.Sprintf("__sandbox_module_%d", len(l.bound))
	if err := l.vm.Set(global, namespace); err != nil {
		return "", fmt.Errorf("failed to bind module %q: %w", specifier, err)
	}
	l.bound[specifier] = global
	return global, nil
}

// bindingFor turns an import clause into const declarations reading from the
// module namespace held in global. Every declaration ends in a semicolon, as
// goja does not insert one after a member access such as g.default.
func bindingFor(clause, global string) (string, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return "", nil
	}

	m := clauseRe.FindStringSubmatch(clause)
	if m == nil {
		return "", fmt.Errorf("unsupported import clause %q", clause)
	}
	defaultName, namespaceName, named := m[1], m[2], m[3]

	var decls []string
	if defaultName != "" {
		decls = append(decls, fmt.Sprintf("const %s = %s.default", defaultName, global))
	}
	if namespaceName != "" {
		decls = append(decls, fmt.Sprintf("const %s = %s", namespaceName, global))
	}
	if strings.TrimSpace(named) != "" {
		var props []string
		for _, item := range strings.Split(named, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if name, alias, ok := strings.Cut(item, " as "); ok {
				props = append(props, strings.TrimSpace(name)+": "+strings.TrimSpace(alias))
				continue
			}
			props = append(props, item)
		}
		decls = append(decls, fmt.Sprintf("const { %s } = %s", strings.Join(props, ", "), global))
	}
	if len(decls) == 0 {
		return "", nil
	}
	return strings.Join(decls, "; ") + ";", nil
}
