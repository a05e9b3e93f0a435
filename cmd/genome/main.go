// Command genome inspects 128-bit blob genomes given as decimal integers.
//
//	genome decode [-layout reference|nominal] <genome>
//	genome mutate [-seed N] [-regions 8] [-rate 0.001] [-n 1] <genome>
//	genome eval [-layout ...] [-steps 1] [-chem-x v] [-chem-y v] [-energy v] <genome>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/pthm-cable/blobs/genome"
	"github.com/pthm-cable/blobs/neural"
)

var errUsage = errors.New("usage: genome decode|mutate|eval [flags] <genome>")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "decode":
		return runDecode(args[1:], out)
	case "mutate":
		return runMutate(args[1:], out)
	case "eval":
		return runEval(args[1:], out)
	}
	return fmt.Errorf("unknown command %q\n%w", args[0], errUsage)
}

// parseGenome parses the flags and the single positional genome argument.
func parseGenome(fs *flag.FlagSet, args []string) (genome.Genome, error) {
	if err := fs.Parse(args); err != nil {
		return genome.Genome{}, err
	}
	if fs.NArg() != 1 {
		return genome.Genome{}, errUsage
	}
	return genome.Parse(fs.Arg(0))
}

func runDecode(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	layoutName := fs.String("layout", "reference", "Descriptor field layout (reference|nominal)")
	g, err := parseGenome(fs, args)
	if err != nil {
		return err
	}
	layout, err := genome.ParseLayout(*layoutName)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "genome   %s\n", g)
	fmt.Fprintf(out, "hex      %016x%016x\n", g.Hi(), g.Lo())
	fmt.Fprintf(out, "reserved %03x\n", g.Reserved())
	for slot := 1; slot <= genome.Slots; slot++ {
		fmt.Fprintf(out, "slot %d   %04x\n", slot, g.Descriptor(slot))
	}
	fmt.Fprintf(out, "layout   %s\n", layout)
	topo := layout.Decode(g)
	fmt.Fprintln(out, topo)
	for _, c := range genome.EvalOrder {
		for _, s := range topo.Synapses(c) {
			src, dst := neural.SynapseLabels(s)
			fmt.Fprintf(out, "edge     %s -> %s %+.5f\n", src, dst, s.Weight)
		}
	}
	return nil
}

func runMutate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mutate", flag.ContinueOnError)
	seed := fs.Int64("seed", 1, "RNG seed")
	regions := fs.Int("regions", genome.DefaultRegions, "Mutation regions")
	rate := fs.Float64("rate", genome.MutationRate, "Per-region flip probability")
	n := fs.Int("n", 1, "Number of generations to apply")
	g, err := parseGenome(fs, args)
	if err != nil {
		return err
	}
	m, err := genome.NewMutator(*regions, *rate)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	cur := g
	for i := 1; i <= *n; i++ {
		next := m.Mutate(rng, cur)
		fmt.Fprintf(out, "%d %s flipped=%v\n", i, next, next.Diff(cur))
		cur = next
	}
	return nil
}

func runEval(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	layoutName := fs.String("layout", "reference", "Descriptor field layout (reference|nominal)")
	steps := fs.Int("steps", 1, "Number of evaluations")
	chemX := fs.Float64("chem-x", 0, "Summed chem x offset (squashed)")
	chemY := fs.Float64("chem-y", 0, "Summed chem y offset (squashed)")
	energy := fs.Float64("energy", 0, "Blob energy (squashed)")
	g, err := parseGenome(fs, args)
	if err != nil {
		return err
	}
	layout, err := genome.ParseLayout(*layoutName)
	if err != nil {
		return err
	}

	ctrl := neural.FromGenome(g, layout)

	// Without sensor flags the inputs keep their initial zero activations.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "chem-x":
			ctrl.SetInput(neural.InputChemX, neural.Sigmoid(float32(*chemX)))
		case "chem-y":
			ctrl.SetInput(neural.InputChemY, neural.Sigmoid(float32(*chemY)))
		case "energy":
			ctrl.SetInput(neural.InputEnergy, neural.Sigmoid(float32(*energy)))
		}
	})

	for i := 1; i <= *steps; i++ {
		o := ctrl.Eval()
		fmt.Fprintf(out, "%d dx=%.7f dy=%.7f consume=%t reproduce=%t drive=%.7f\n",
			i, o.DX, o.DY, o.Consume, o.Reproduce, ctrl.Output(neural.OutputReproduce))
	}
	return nil
}
