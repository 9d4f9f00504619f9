// intrinsic-lint self-checks the fixed intrinsic catalogue for duplicate
// names and malformed signatures, adapted from the teacher's opcode-lint
// (cmd/opcode-lint/main.go) which did the same check over the opcode table.
package main

import (
	"fmt"
	"log"

	"github.com/infrabridge/chaincore/core"
)

func main() {
	intrinsics := core.Catalogue()
	seenNames := make(map[string]struct{}, len(intrinsics))
	for _, i := range intrinsics {
		if _, ok := seenNames[i.Name]; ok {
			log.Fatalf("duplicate intrinsic name %s", i.Name)
		}
		seenNames[i.Name] = struct{}{}
		for _, t := range i.Signature.Params {
			if t > core.TypeF64 {
				log.Fatalf("intrinsic %s: invalid parameter type %d", i.Name, t)
			}
		}
		for _, t := range i.Signature.Returns {
			if t > core.TypeF64 {
				log.Fatalf("intrinsic %s: invalid return type %d", i.Name, t)
			}
		}
		if len(i.Signature.Returns) > 1 {
			log.Fatalf("intrinsic %s: guest ABI permits at most one return word", i.Name)
		}
	}
	fmt.Printf("checked %d intrinsics, no collisions detected\n", len(intrinsics))
}
