// swc resolves the switches of fixture files,
// reports their diagnostics, and generates and runs their dispatch code.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/eaburns/swc/check"
	"github.com/eaburns/swc/diag"
	"github.com/eaburns/swc/dispatch"
	"github.com/eaburns/swc/emit"
	"github.com/eaburns/swc/emit/interp"
	"github.com/eaburns/swc/parser"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		die("%s", err)
	}
}

func die(f string, vs ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", vs...)
	os.Exit(1)
}

type options struct {
	config     string
	level      int
	maxSpan    int64
	patterns   bool
	primitives bool
	color      string
	trace      bool

	cfg      *diag.Config
	useColor bool
}

func newRootCmd() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "swc",
		Short:         "Analyze switches and generate their dispatch code",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.OutOrStdout())
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.config, "config", "", "YAML `file` of diagnostic severities")
	flags.IntVar(&opts.level, "target", dispatch.DefaultTarget.Level, "language `level` of generated code")
	flags.Int64Var(&opts.maxSpan, "max-table-span", dispatch.DefaultTarget.MaxTableSpan, "largest key span of a dense table")
	flags.BoolVar(&opts.patterns, "pattern-mode", true, "allow pattern labels and switches on any reference type")
	flags.BoolVar(&opts.primitives, "primitive-patterns", false, "allow long, float, and double selectors")
	flags.StringVar(&opts.color, "color", "auto", "color diagnostics: auto, always, or never")
	flags.BoolVar(&opts.trace, "trace", false, "trace resolution and code generation to stderr")
	root.AddCommand(newCheckCmd(&opts), newGenCmd(&opts), newRunCmd(&opts))
	return root
}

func (opts *options) init(out io.Writer) error {
	opts.cfg = diag.DefaultConfig()
	if opts.config != "" {
		cfg, err := diag.LoadConfig(opts.config)
		if err != nil {
			return err
		}
		opts.cfg = cfg
	}
	switch opts.color {
	case "always":
		opts.useColor = true
	case "never":
		opts.useColor = false
	case "auto":
		f, ok := out.(*os.File)
		opts.useColor = ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	default:
		return fmt.Errorf("bad --color %q: want auto, always, or never", opts.color)
	}
	return nil
}

func (opts *options) target() dispatch.Target {
	return dispatch.Target{Level: opts.level, MaxTableSpan: opts.maxSpan}
}

// analyze parses and resolves every switch of the file at path,
// printing its diagnostics to the command's output.
func (opts *options) analyze(cmd *cobra.Command, path string) (*parser.File, *diag.List, error) {
	f, err := parser.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	checkOpts := []check.Option{
		check.PatternMatching(opts.patterns),
		check.PrimitivePatterns(opts.primitives),
	}
	if opts.trace {
		checkOpts = append(checkOpts, check.Trace(cmd.ErrOrStderr(), f.Files()))
	}
	diags := &diag.List{Config: opts.cfg}
	for _, sw := range f.Switches {
		check.Resolve(f.Universe, sw, diags, checkOpts...)
	}
	for _, d := range diags.Diags {
		fmt.Fprintln(cmd.OutOrStdout(), opts.colorize(d.Severity, d.Format(f.Files())))
	}
	return f, diags, nil
}

func (opts *options) generate(cmd *cobra.Command, sw *check.Switch) (*emit.Program, error) {
	p := &emit.Program{Name: sw.String()}
	dispatchOpts := []dispatch.Option{dispatch.WithTarget(opts.target())}
	if opts.trace {
		dispatchOpts = append(dispatchOpts, dispatch.Trace(cmd.ErrOrStderr()))
	}
	if err := dispatch.Generate(sw, p, dispatchOpts...); err != nil {
		return nil, err
	}
	return p, nil
}

const reset = "\x1b[0m"

var severityColors = map[diag.Severity]string{
	diag.Error:   "\x1b[1;31m",
	diag.Warning: "\x1b[1;33m",
}

func (opts *options) colorize(s diag.Severity, text string) string {
	c, ok := severityColors[s]
	if !opts.useColor || !ok {
		return text
	}
	name := s.String() + ":"
	return strings.Replace(text, name, c+name+reset, 1)
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Print the diagnostics of each switch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs int
			for _, path := range args {
				_, diags, err := opts.analyze(cmd, path)
				if err != nil {
					return err
				}
				errs += diags.Errors()
			}
			if errs > 0 {
				return fmt.Errorf("%d errors", errs)
			}
			return nil
		},
	}
}

func newGenCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "gen FILE...",
		Short: "Print the verdict and dispatch code of each switch",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var failed int
			for _, path := range args {
				f, _, err := opts.analyze(cmd, path)
				if err != nil {
					return err
				}
				for _, sw := range f.Switches {
					fmt.Fprintln(out, verdict(sw))
					if sw.Invalid {
						failed++
						continue
					}
					p, err := opts.generate(cmd, sw)
					if err != nil {
						fmt.Fprintln(out, err)
						failed++
						continue
					}
					fmt.Fprint(out, p)
				}
			}
			if failed > 0 {
				return fmt.Errorf("no code generated for %d switches", failed)
			}
			return nil
		},
	}
}

// verdict returns a one-line summary of a resolved switch.
func verdict(sw *check.Switch) string {
	if sw.Invalid {
		return fmt.Sprintf("%s: invalid", sw)
	}
	var s strings.Builder
	fmt.Fprintf(&s, "%s: %s selector, %s strategy", sw, sw.Kind, sw.Strategy)
	if sw.Exhaustive {
		s.WriteString(", exhaustive")
	}
	if sw.TotalPattern != nil {
		fmt.Fprintf(&s, ", total pattern %s", sw.TotalPattern)
	}
	if sw.IsExpr && sw.ResultType != nil {
		fmt.Fprintf(&s, ", yields %s", sw.ResultType)
	}
	return s.String()
}

func newRunCmd(opts *options) *cobra.Command {
	var (
		name   string
		value  string
		guards map[string]string
	)
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Interpret the dispatch code of a switch on a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			truth := make(map[string]bool)
			for expr, s := range guards {
				b, err := strconv.ParseBool(s)
				if err != nil {
					return fmt.Errorf("bad --guard %s=%s: %w", expr, s, err)
				}
				truth[expr] = b
			}
			f, diags, err := opts.analyze(cmd, args[0])
			if err != nil {
				return err
			}
			if n := diags.Errors(); n > 0 {
				return fmt.Errorf("%d errors", n)
			}
			sw, err := findSwitch(f, name)
			if err != nil {
				return err
			}
			p, err := opts.generate(cmd, sw)
			if err != nil {
				return err
			}
			v, err := parser.ParseValue(f.Universe, value)
			if err != nil {
				return err
			}
			in := interp.New(f.Universe)
			in.Guard = func(expr string, _ map[emit.Temp]interp.Val) bool { return truth[expr] }
			if opts.trace {
				in.Trace = cmd.ErrOrStderr()
			}
			printResult(cmd.OutOrStdout(), sw, in.Run(p, v))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "switch", "0", "`name` or index of the switch to run")
	flags.StringVar(&value, "value", "", "selector `value`")
	flags.StringToStringVar(&guards, "guard", nil, "`expr=bool` outcome of a guard; other guards are false")
	cobra.CheckErr(cmd.MarkFlagRequired("value"))
	return cmd
}

func findSwitch(f *parser.File, name string) (*check.Switch, error) {
	for _, sw := range f.Switches {
		if sw.Name != "" && sw.Name == name {
			return sw, nil
		}
	}
	i, err := strconv.Atoi(name)
	if err != nil {
		return nil, fmt.Errorf("no switch named %s", name)
	}
	if i < 0 || i >= len(f.Switches) {
		return nil, errors.New("switch index out of range")
	}
	return f.Switches[i], nil
}

func printResult(out io.Writer, sw *check.Switch, res *interp.Result) {
	for _, b := range res.Bodies {
		fmt.Fprintf(out, "case %d\n", b)
	}
	var names []emit.Temp
	for _, t := range maps.Keys(res.Env) {
		if !strings.HasPrefix(string(t), "$") {
			names = append(names, t)
		}
	}
	slices.Sort(names)
	for _, n := range names {
		fmt.Fprintf(out, "%s = %s\n", n, res.Env[n])
	}
	if res.Fault != nil {
		fmt.Fprintf(out, "%s: %s\n", sw, res.Fault)
	}
}
