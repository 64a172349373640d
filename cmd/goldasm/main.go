// Command goldasm is the GoldASM toolchain's CLI entry point: assemble a
// source program to a binary image plus symbol file, run it interactively
// in the simulator TUI, or dump a static disassembly — grounded on
// chriskillpack-bbcdisasm/cmd/bbcdisasm/main.go's cli.App/cli.Command/
// cli.Flag shape, upgraded to urfave/cli v2.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	cli "github.com/urfave/cli/v2"

	"github.com/electricboy6/GoldASM/asm/encode"
	"github.com/electricboy6/GoldASM/asm/lower"
	"github.com/electricboy6/GoldASM/asm/parse"
	"github.com/electricboy6/GoldASM/asm/symtab"
	"github.com/electricboy6/GoldASM/internal/diag"
	"github.com/electricboy6/GoldASM/internal/ioport"
	"github.com/electricboy6/GoldASM/sim/disasm"
	"github.com/electricboy6/GoldASM/sim/exec"
	"github.com/electricboy6/GoldASM/sim/tui"
)

// defaultImageSize matches spec.md §6's default 65,535-byte image.
const defaultImageSize = 65535

func main() {
	app := &cli.App{
		Name:  "goldasm",
		Usage: "assembler, simulator and disassembler for the GoldASM 8-bit accumulator machine",
		Commands: []*cli.Command{
			assembleCommand,
			simulateCommand,
			disasmCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var assembleCommand = &cli.Command{
	Name:      "assemble",
	Usage:     "assemble a source file into a .bin image and a .symbols file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "o", Usage: "output path stem (defaults to the input file's stem)"},
		&cli.IntFlag{Name: "size", Value: defaultImageSize, Usage: "image size in bytes"},
	},
	Action: func(c *cli.Context) error {
		args := c.Args()
		if args.Len() < 1 {
			return cli.Exit("assemble requires a source file", 1)
		}
		file := args.First()

		out := c.String("o")
		if out == "" {
			out = file[:len(file)-len(filepath.Ext(file))]
		}

		bag := &diag.Bag{}
		top, includes, err := parse.Parse(filepath.Dir(file), filepath.Base(file), bag)
		if err != nil {
			return cli.Exit(err, 1)
		}
		instructions := lower.Lower(parse.Flatten(top, includes))

		image, table, err := encode.Encode(instructions, uint16(c.Int("size")))
		if err != nil {
			return cli.Exit(err, 1)
		}

		for _, d := range bag.All() {
			fmt.Fprintln(os.Stderr, d)
		}

		if err := writeFileRetrying(out+".bin", image); err != nil {
			return cli.Exit(err, 1)
		}
		symBytes, err := table.Marshal()
		if err != nil {
			return cli.Exit(err, 1)
		}
		if err := writeFileRetrying(out+".symbols", symBytes); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	},
}

var simulateCommand = &cli.Command{
	Name:      "simulate",
	Usage:     "launch the interactive TUI simulator against a .bin image",
	ArgsUsage: "<bin> [symbols]",
	Action: func(c *cli.Context) error {
		args := c.Args()
		if args.Len() < 1 {
			return cli.Exit("simulate requires a .bin file", 1)
		}

		image, err := os.ReadFile(args.First())
		if err != nil {
			return cli.Exit(err, 1)
		}

		var table *symtab.Table
		if args.Len() >= 2 {
			table, err = symtab.ReadFile(args.Get(1))
			if err != nil {
				return cli.Exit(err, 1)
			}
		}

		cpu := exec.New()
		copy(cpu.Memory[:], image)
		cpu.Reset()

		port := ioport.New(cpu)
		if err := tui.Run(cpu, port, table, cpu.ProgramCounter); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	},
}

var disasmCommand = &cli.Command{
	Name:      "disasm",
	Usage:     "dump a static disassembly of a .bin image to stdout",
	ArgsUsage: "<bin> [symbols] [offset] [length]",
	Action: func(c *cli.Context) error {
		args := c.Args()
		if args.Len() < 1 {
			return cli.Exit("disasm requires a .bin file", 1)
		}

		image, err := os.ReadFile(args.First())
		if err != nil {
			return cli.Exit(err, 1)
		}

		var table *symtab.Table
		argIdx := 1
		if args.Len() >= 2 {
			if sym, err := symtab.ReadFile(args.Get(1)); err == nil {
				table = sym
				argIdx = 2
			}
		}

		var start uint16
		if args.Len() > argIdx {
			v, err := strconv.ParseUint(args.Get(argIdx), 0, 16)
			if err != nil {
				return cli.Exit(fmt.Sprintf("could not parse offset: %v", err), 1)
			}
			start = uint16(v)
			argIdx++
		}

		end := uint16(len(image))
		if args.Len() > argIdx {
			v, err := strconv.ParseUint(args.Get(argIdx), 0, 16)
			if err != nil {
				return cli.Exit(fmt.Sprintf("could not parse length: %v", err), 1)
			}
			if candidate := start + uint16(v); candidate < uint16(len(image)) {
				end = candidate
			}
		}

		for _, line := range disasm.Disassemble(image, start, end, table) {
			fmt.Println(line)
		}
		return nil
	},
}

// writeFileRetrying matches spec.md §7's I/O error policy: retry once
// after deleting a pre-existing file at path before giving up.
func writeFileRetrying(path string, data []byte) error {
	err := os.WriteFile(path, data, 0o644)
	if err == nil {
		return nil
	}
	if rmErr := os.Remove(path); rmErr != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s after retry: %w", path, err)
	}
	return nil
}
