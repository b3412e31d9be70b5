// Package noosexit defines an analyzer that forbids calling os.Exit from
// the main function of package main. A direct exit skips deferred cleanup
// and makes the entry point hard to test.
package noosexit

import (
	"go/ast"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports every os.Exit call found inside main.main.
var Analyzer = &analysis.Analyzer{
	Name: "noosexit",
	Doc:  "reports calls to os.Exit inside main.main",
	Run:  run,
}

func run(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	for _, file := range pass.Files {
		// Generated files under the build cache are not project code.
		if inGoBuildCache(pass.Fset.File(file.Pos()).Name()) {
			continue
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || fn.Name.Name != "main" {
				continue
			}

			ast.Inspect(fn.Body, func(node ast.Node) bool {
				call, ok := node.(*ast.CallExpr)
				if !ok {
					return true
				}

				selector, ok := call.Fun.(*ast.SelectorExpr)
				if !ok || selector.Sel.Name != "Exit" {
					return true
				}

				if pkgIdent, ok := selector.X.(*ast.Ident); ok && pkgIdent.Name == "os" {
					pass.Reportf(call.Pos(), "avoid using os.Exit in main.main")
				}

				return true
			})
		}
	}

	return nil, nil
}

func inGoBuildCache(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/go-build/")
}
