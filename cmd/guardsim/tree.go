package main

import (
	"fmt"
	"os"

	"github.com/zeusync/guardai/internal/core/bt"
	"github.com/zeusync/guardai/internal/core/guard"
)

type TreeCmd struct {
	Tree   string `type:"path" help:"Tree definition (.yaml or .json); the built-in tree when unset."`
	Source bool   `help:"Print the built-in tree definition instead."`
}

func (t *TreeCmd) Run() error {
	if t.Source {
		_, err := os.Stdout.Write(guard.DefaultTreeSource())
		return err
	}

	def, err := guard.DefaultTree()
	if t.Tree != "" {
		def, err = bt.LoadFile(t.Tree)
	}
	if err != nil {
		return err
	}
	tree, err := bt.Build(def, guard.NewRegistry())
	if err != nil {
		return err
	}
	fmt.Print(tree.String())
	fmt.Printf("\n%d nodes, fingerprint %016x\n", tree.Len(), tree.Fingerprint())
	return nil
}
