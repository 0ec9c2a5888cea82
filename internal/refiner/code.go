package refiner

import (
	"context"
	"fmt"
	"regexp"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:python)?\\s*\\n(.*?)```")

// ExtractCode implements spec.md §4.8's coding-contract rule: find the
// first fenced code block containing a complete function definition
// whose name matches expectedFunctionName (e.g. "has_close_elements" from
// "def has_close_elements(numbers, threshold):"). Parses with
// tree-sitter rather than regexing braces, so nested defs and
// multi-line signatures are handled correctly.
func ExtractCode(ctx context.Context, text, expectedFunctionName string) (Outcome, error) {
	blocks := fencedBlockPattern.FindAllStringSubmatch(text, -1)
	for _, block := range blocks {
		body := block[1]
		if fn, ok, err := findFunction(ctx, body, expectedFunctionName); err != nil {
			return Outcome{}, err
		} else if ok {
			return Outcome{Text: fn}, nil
		}
	}
	// No fenced block matched; try the raw text itself in case the
	// model omitted the fence.
	if fn, ok, err := findFunction(ctx, text, expectedFunctionName); err != nil {
		return Outcome{}, err
	} else if ok {
		return Outcome{Text: fn}, nil
	}
	return Outcome{Text: text, UsedFallback: true, FallbackKind: "FORMAT_FALLBACK"}, nil
}

func findFunction(ctx context.Context, source, expectedName string) (string, bool, error) {
	content := []byte(source)
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return "", false, fmt.Errorf("refiner: tree-sitter parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return "", false, nil
	}

	var found *sitter.Node
	walkFunctionDefs(root, func(node *sitter.Node) bool {
		name := functionName(node, content)
		if name == expectedName {
			found = node
			return false
		}
		return true
	})

	if found == nil {
		return "", false, nil
	}
	return string(content[found.StartByte():found.EndByte()]), true, nil
}

// walkFunctionDefs visits every function_definition node in the tree,
// depth-first, invoking visit on each until visit returns false.
func walkFunctionDefs(node *sitter.Node, visit func(*sitter.Node) bool) bool {
	if node.Type() == "function_definition" {
		if !visit(node) {
			return false
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if !walkFunctionDefs(node.Child(i), visit) {
			return false
		}
	}
	return true
}

func functionName(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" {
			return string(content[child.StartByte():child.EndByte()])
		}
	}
	return ""
}
