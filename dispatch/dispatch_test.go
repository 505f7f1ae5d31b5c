package dispatch_test

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/eaburns/swc/check"
	"github.com/eaburns/swc/diag"
	"github.com/eaburns/swc/dispatch"
	"github.com/eaburns/swc/emit"
	"github.com/eaburns/swc/emit/interp"
	"github.com/eaburns/swc/parser"
	"github.com/eaburns/swc/types"
	"github.com/google/go-cmp/cmp"
)

const decls = `
	sealed interface Shape permits Circle, Square
	record Circle(double r) implements Shape
	final class Square implements Shape
	enum Color { RED, GREEN, BLUE }
	record Pair<A, B>(A first, B second)
	record Box<T>(T value)
	sealed interface Tok permits Kw, Num
	enum Kw implements Tok { IF, ELSE }
	record Num(int n) implements Tok
`

func generate(t *testing.T, src string, opts ...dispatch.Option) (*parser.File, *emit.Program) {
	t.Helper()
	f, err := parser.Parse("test.sw", decls+src)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	sw := f.Switches[0]
	var diags diag.List
	check.Resolve(f.Universe, sw, &diags)
	if diags.Errors() > 0 {
		t.Fatalf("resolve failed: %v", diags.Kinds())
	}
	p := &emit.Program{Name: sw.String()}
	if err := dispatch.Generate(sw, p, opts...); err != nil {
		t.Fatalf("Generate failed: %s", err)
	}
	return f, p
}

// evalGuard evaluates guards of the form "name > n".
func evalGuard(expr string, env map[emit.Temp]interp.Val) bool {
	fs := strings.Fields(expr)
	if len(fs) != 3 || fs[1] != ">" {
		panic("bad guard: " + expr)
	}
	n, err := strconv.ParseInt(fs[2], 10, 64)
	if err != nil {
		panic("bad guard: " + expr)
	}
	switch v := env[emit.Temp(fs[0])].(type) {
	case interp.Prim:
		if v.Kind == types.Double || v.Kind == types.Float {
			return v.F > float64(n)
		}
		return v.N > n
	default:
		panic(fmt.Sprintf("bad guard operand %s=%v", fs[0], v))
	}
}

func run(f *parser.File, p *emit.Program, v interp.Val, pending ...interp.Val) *interp.Result {
	in := interp.New(f.Universe)
	in.Guard = evalGuard
	return in.Run(p, v, pending...)
}

func outcome(res *interp.Result) string {
	if res.Fault != nil {
		return res.Fault.Kind.String()
	}
	return fmt.Sprint(res.Bodies)
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		// runs maps a value to its outcome:
		// the bodies executed, or the kind of fault.
		runs map[string]string
	}{
		{
			name: "dense int",
			src:  "switch (int) { case 1 -> break; case 2 -> break; case 3 -> break; default -> break; }",
			runs: map[string]string{"2": "[1]", "3": "[2]", "7": "[3]", "-1": "[3]"},
		},
		{
			name: "sparse int",
			src:  "switch (int) { case 1000 -> break; case -5 -> break; case 1 -> break; }",
			runs: map[string]string{"1000": "[0]", "-5": "[1]", "1": "[2]", "2": "[]"},
		},
		{
			name: "fall through",
			src:  `switch (int) { case 1: "a"; case 2: "b"; break; default: "c"; }`,
			runs: map[string]string{"1": "[0 1]", "2": "[1]", "3": "[2]"},
		},
		{
			name: "several labels",
			src:  "switch (int) { case 1, 3 -> break; case 2, 4 -> break; }",
			runs: map[string]string{"3": "[0]", "4": "[1]", "5": "[]"},
		},
		{
			name: "char",
			src:  "switch (char) { case 'a' -> break; case 'b' -> break; }",
			runs: map[string]string{"'b'": "[1]", "'z'": "[]"},
		},
		{
			name: "boolean",
			src:  "switch (boolean) { case true -> break; case false -> break; }",
			runs: map[string]string{"true": "[0]", "false": "[1]"},
		},
		{
			name: "boxed integer",
			src:  "switch (Integer) { case 1 -> break; default -> break; }",
			runs: map[string]string{"1": "[0]", "2": "[1]", "null": "NullPointer"},
		},
		{
			name: "enum",
			src:  "switch (Color) { case RED -> break; case BLUE -> break; default -> break; }",
			runs: map[string]string{"Color.BLUE": "[1]", "Color.GREEN": "[2]", "null": "NullPointer"},
		},
		{
			name: "enum expression",
			src:  "switch expr (Color) { case RED -> yield int; case GREEN -> yield int; case BLUE -> yield int; }",
			runs: map[string]string{"Color.RED": "[0]", "Color.GREEN": "[1]", "Color.BLUE": "[2]"},
		},
		{
			name: "text",
			src:  `switch (String) { case "FB" -> break; case "Ea" -> break; case "x" -> break; default -> break; }`,
			runs: map[string]string{
				`"FB"`: "[0]",
				`"Ea"`: "[1]",
				`"x"`:  "[2]",
				`"Fb"`: "[3]",
				`""`:   "[3]",
				"null": "NullPointer",
			},
		},
		{
			name: "text without default",
			src:  `switch (String) { case "a": "a"; case "b": "b"; break; }`,
			runs: map[string]string{`"a"`: "[0 1]", `"b"`: "[1]", `"c"`: "[]"},
		},
		{
			name: "sealed",
			src:  "switch (Shape) { case Circle c -> break; case Square s -> break; }",
			runs: map[string]string{"Circle(1)": "[0]", "Square": "[1]", "null": "NullPointer"},
		},
		{
			name: "null label",
			src:  "switch (Shape) { case null -> break; case Circle c -> break; case Square s -> break; }",
			runs: map[string]string{"null": "[0]", "Circle(1)": "[1]", "Square": "[2]"},
		},
		{
			name: "null and default",
			src:  "switch (Object) { case String s -> break; case null, default -> break; }",
			runs: map[string]string{"null": "[1]", "5": "[1]", `"x"`: "[0]"},
		},
		{
			name: "guard restarts classification",
			src: `switch (Object) {
				case Integer i when "i > 10" -> break;
				case Integer i -> break;
				case String s -> break;
				default -> break;
			}`,
			runs: map[string]string{"42": "[0]", "3": "[1]", `"s"`: "[2]", "Square": "[3]"},
		},
		{
			name: "constant false guard",
			src:  `switch (Object) { case Integer i when false -> break; default -> break; }`,
			runs: map[string]string{"42": "[1]"},
		},
		{
			name: "nested record",
			src: `switch (Object) {
				case Pair(Circle c, Square s) -> break;
				case Pair(Square s, var x) -> break;
				case Pair p -> break;
				default -> break;
			}`,
			runs: map[string]string{
				"Pair(Circle(1), Square)":    "[0]",
				"Pair(Square, 1)":            "[1]",
				"Pair(Circle(1), Circle(2))": "[2]",
				"Pair(null, Square)":         "[2]",
				"Box(1)":                     "[3]",
			},
		},
		{
			name: "nested alternative",
			src:  "switch (Object) { case Box(Circle _ | Square _) -> break; default -> break; }",
			runs: map[string]string{"Box(Square)": "[0]", "Box(Circle(1))": "[0]", "Box(1)": "[1]", "Box(null)": "[1]"},
		},
		{
			name: "nested guard",
			src:  `switch (Shape) { case Circle(double r) when "r > 1" -> break; case Circle c -> break; case Square s -> break; }`,
			runs: map[string]string{"Circle(2)": "[0]", "Circle(1)": "[1]", "Square": "[2]"},
		},
		{
			name: "accessor failure",
			src:  "switch (Shape) { case Circle(double r) -> break; case Square s -> break; }",
			runs: map[string]string{"Circle(1)": "[0]", "Circle(1) throws r": "AccessorFailure"},
		},
		{
			name: "constants and patterns",
			src: `switch (Integer) {
				case 1 -> break;
				case Integer i when "i > 10" -> break;
				case Integer i -> break;
			}`,
			runs: map[string]string{"1": "[0]", "20": "[1]", "5": "[2]", "null": "NullPointer"},
		},
		{
			name: "qualified enum constants",
			src: `switch (Tok) {
				case Kw.IF -> break;
				case Kw k -> break;
				case Num(var n) when "n > 0" -> break;
				case Num n -> break;
			}`,
			runs: map[string]string{"Kw.IF": "[0]", "Kw.ELSE": "[1]", "Num(5)": "[2]", "Num(0)": "[3]"},
		},
		{
			name: "enum with patterns",
			src:  "switch (Color) { case RED -> break; case Color c -> break; }",
			runs: map[string]string{"Color.RED": "[0]", "Color.BLUE": "[1]", "null": "NullPointer"},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			f, p := generate(t, test.src)
			for v, want := range test.runs {
				val, err := parser.ParseValue(f.Universe, v)
				if err != nil {
					t.Fatalf("ParseValue(%q) failed: %s", v, err)
				}
				if got := outcome(run(f, p, val)); got != want {
					t.Errorf("%s: got %s, want %s\n%s", v, got, want, p)
				}
			}
		})
	}
}

func count(p *emit.Program, pred func(emit.Instr) bool) int {
	var n int
	for _, instr := range p.Instrs {
		if pred(instr) {
			n++
		}
	}
	return n
}

func isTable(instr emit.Instr) bool { _, ok := instr.(*emit.TableSwitch); return ok }
func isEq(instr emit.Instr) bool    { _, ok := instr.(*emit.Eq); return ok }

func TestKeySwitchForm(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		target dispatch.Target
		tables int
		eqs    int
	}{
		{
			name:   "dense",
			src:    "switch (int) { case 1 -> break; case 2 -> break; case 4 -> break; }",
			tables: 1,
		},
		{
			name: "sparse",
			src:  "switch (int) { case 1 -> break; case 10 -> break; }",
			eqs:  2,
		},
		{
			name:   "span exceeds target",
			src:    "switch (int) { case 0 -> break; case 1 -> break; case 2 -> break; case 3 -> break; case 4 -> break; }",
			target: dispatch.Target{Level: 21, MaxTableSpan: 3},
			eqs:    5,
		},
		{
			name:   "span equals target",
			src:    "switch (int) { case 0 -> break; case 1 -> break; case 2 -> break; case 3 -> break; case 4 -> break; }",
			target: dispatch.Target{Level: 21, MaxTableSpan: 4},
			tables: 1,
		},
		{
			name:   "span within target",
			src:    "switch (int) { case 0 -> break; case 1 -> break; case 2 -> break; case 3 -> break; }",
			target: dispatch.Target{Level: 21, MaxTableSpan: 4},
			tables: 1,
		},
		{
			name: "sparse char",
			src:  "switch (char) { case 'a' -> break; case 'z' -> break; }",
			eqs:  2,
		},
		{
			name:   "text buckets",
			src:    `switch (String) { case "FB" -> break; case "Ea" -> break; }`,
			tables: 1,
		},
		{
			name:   "pattern",
			src:    "switch (Shape) { case Circle c -> break; case Square s -> break; }",
			tables: 1,
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var opts []dispatch.Option
			if test.target != (dispatch.Target{}) {
				opts = append(opts, dispatch.WithTarget(test.target))
			}
			_, p := generate(t, test.src, opts...)
			if n := count(p, isTable); n != test.tables {
				t.Errorf("got %d tables, want %d\n%s", n, test.tables, p)
			}
			if n := count(p, isEq); n != test.eqs {
				t.Errorf("got %d comparisons, want %d\n%s", n, test.eqs, p)
			}
		})
	}
}

func TestTextHashCollision(t *testing.T) {
	f, p := generate(t, `switch (String) { case "FB" -> break; case "Ea" -> break; default -> break; }`)
	var table *emit.TableSwitch
	for _, instr := range p.Instrs {
		if ts, ok := instr.(*emit.TableSwitch); ok {
			table = ts
		}
	}
	if table == nil || table.Lo != 2236 || len(table.Targets) != 1 {
		t.Fatalf("want a one-bucket table at 2236, got\n%s", p)
	}
	if n := count(p, func(i emit.Instr) bool { _, ok := i.(*emit.TextEquals); return ok }); n != 2 {
		t.Errorf("got %d text comparisons, want 2\n%s", n, p)
	}
	for v, want := range map[string]string{`"FB"`: "[0]", `"Ea"`: "[1]", `"Fa"`: "[2]"} {
		val, err := parser.ParseValue(f.Universe, v)
		if err != nil {
			t.Fatalf("ParseValue(%q) failed: %s", v, err)
		}
		if got := outcome(run(f, p, val)); got != want {
			t.Errorf("%s: got %s, want %s", v, got, want)
		}
	}
}

func TestStructuredFailure(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		level int
		value func(u *types.Universe) interp.Val
		want  string
	}{
		{
			name:  "enum constant added after compilation",
			src:   "switch expr (Color) { case RED -> yield int; case GREEN -> yield int; case BLUE -> yield int; }",
			level: 21,
			value: func(u *types.Universe) interp.Val { return &interp.Obj{Class: u.Lookup("Color"), Ordinal: 3} },
			want:  "MatchFailure",
		},
		{
			name:  "enum constant on an old target",
			src:   "switch expr (Color) { case RED -> yield int; case GREEN -> yield int; case BLUE -> yield int; }",
			level: 17,
			value: func(u *types.Universe) interp.Val { return &interp.Obj{Class: u.Lookup("Color"), Ordinal: 3} },
			want:  "IncompatibleClassChange",
		},
		{
			name:  "enum statement falls through",
			src:   "switch (Color) { case RED -> break; case GREEN -> break; case BLUE -> break; }",
			level: 21,
			value: func(u *types.Universe) interp.Val { return &interp.Obj{Class: u.Lookup("Color"), Ordinal: 3} },
			want:  "[]",
		},
		{
			name:  "subclass added after compilation",
			src:   "switch (Shape) { case Circle c -> break; case Square s -> break; }",
			level: 21,
			value: func(u *types.Universe) interp.Val {
				hex := &types.Class{Name: "Hexagon", Final: true, Supers: []*types.Ref{{Class: u.Lookup("Shape")}}}
				return &interp.Obj{Class: hex, Ordinal: -1}
			},
			want: "MatchFailure",
		},
		{
			name:  "subclass on an old target",
			src:   "switch (Shape) { case Circle c -> break; case Square s -> break; }",
			level: 11,
			value: func(u *types.Universe) interp.Val {
				hex := &types.Class{Name: "Hexagon", Final: true, Supers: []*types.Ref{{Class: u.Lookup("Shape")}}}
				return &interp.Obj{Class: hex, Ordinal: -1}
			},
			want: "IncompatibleClassChange",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			f, p := generate(t, test.src, dispatch.WithTarget(dispatch.Target{Level: test.level}))
			if got := outcome(run(f, p, test.value(f.Universe))); got != test.want {
				t.Errorf("got %s, want %s\n%s", got, test.want, p)
			}
		})
	}
}

func TestSpillPendingStack(t *testing.T) {
	f, err := parser.Parse("test.sw", decls+"switch expr (Shape) { case Circle(double r) -> yield int; case Square s -> yield int; }")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	sw := f.Switches[0]
	var diags diag.List
	check.Resolve(f.Universe, sw, &diags)
	p := &emit.Program{Stack: 2}
	if err := dispatch.Generate(sw, p); err != nil {
		t.Fatalf("Generate failed: %s", err)
	}
	if _, ok := p.Instrs[0].(*emit.Spill); !ok {
		t.Errorf("first instruction is %s, want spill\n%s", p.Instrs[0], p)
	}
	pending := []interp.Val{interp.Prim{Kind: types.Int, N: 1}, interp.Text("x")}
	square, err := parser.ParseValue(f.Universe, "Square")
	if err != nil {
		t.Fatalf("ParseValue failed: %s", err)
	}
	res := run(f, p, square, pending...)
	if got := outcome(res); got != "[1]" {
		t.Errorf("got %s, want [1]", got)
	}
	if diff := cmp.Diff(pending, res.Stack); diff != "" {
		t.Errorf("restored stack mismatch (-want +got):\n%s", diff)
	}

	throws, err := parser.ParseValue(f.Universe, "Circle(1) throws r")
	if err != nil {
		t.Fatalf("ParseValue failed: %s", err)
	}
	if got := outcome(run(f, p, throws, pending...)); got != "AccessorFailure" {
		t.Errorf("got %s, want AccessorFailure", got)
	}
}

func TestGenerateTwice(t *testing.T) {
	f, err := parser.Parse("test.sw", decls+`
		switch (Object) {
		case Pair(Circle c, var x) when "c > 0" -> break;
		case Pair(Square s, Box(var v)) -> break;
		default -> break;
		}
	`)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	sw := f.Switches[0]
	var diags diag.List
	check.Resolve(f.Universe, sw, &diags)
	var first, second emit.Program
	if err := dispatch.Generate(sw, &first); err != nil {
		t.Fatalf("Generate failed: %s", err)
	}
	if err := dispatch.Generate(sw, &second); err != nil {
		t.Fatalf("Generate failed: %s", err)
	}
	if diff := cmp.Diff(first.String(), second.String()); diff != "" {
		t.Errorf("second generation mismatch (-first +second):\n%s", diff)
	}
	if !strings.Contains(first.String(), "store $0\n") {
		t.Errorf("temporaries do not start at $0:\n%s", first.String())
	}
}

func TestGenerateConcurrently(t *testing.T) {
	const src = `switch (Shape) {
		case Circle(double r) when "r > 1" -> break;
		case Circle c -> break;
		case Square s -> break;
	}`
	const n = 16
	progs := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f, err := parser.Parse("test.sw", decls+src)
			if err != nil {
				t.Errorf("failed to parse: %s", err)
				return
			}
			sw := f.Switches[0]
			var diags diag.List
			check.Resolve(f.Universe, sw, &diags)
			var p emit.Program
			if err := dispatch.Generate(sw, &p); err != nil {
				t.Errorf("Generate failed: %s", err)
				return
			}
			progs[i] = p.String()
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if progs[i] != progs[0] {
			t.Errorf("program %d differs from program 0:\n%s\n%s", i, progs[i], progs[0])
		}
	}
}

func TestGenerateInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "mixed forms", src: "switch (int) { case 1 -> break; case 2: break; }"},
		{name: "empty expression", src: "switch expr (int) { }"},
		{name: "short record pattern", src: "switch (Shape) { case Circle() -> break; default -> break; }"},
	}
	for _, test := range tests {
		f, err := parser.Parse("test.sw", decls+test.src)
		if err != nil {
			t.Fatalf("%s: failed to parse: %s", test.name, err)
		}
		sw := f.Switches[0]
		var diags diag.List
		check.Resolve(f.Universe, sw, &diags)
		if err := dispatch.Generate(sw, &emit.Program{}); err == nil {
			t.Errorf("%s: Generate succeeded, want an error", test.name)
		}
	}
}

func TestTrace(t *testing.T) {
	f, err := parser.Parse("test.sw", decls+`switch (Shape) { case Circle(double r) -> break; case Square s -> break; }`)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	sw := f.Switches[0]
	var diags diag.List
	check.Resolve(f.Universe, sw, &diags)
	var trace strings.Builder
	if err := dispatch.Generate(sw, &emit.Program{}, dispatch.Trace(&trace)); err != nil {
		t.Fatalf("Generate failed: %s", err)
	}
	want := []string{
		"Start switch (Shape) PATTERN",
		"Classify 2 entries",
		"\tEntry 0: Circle(double r)",
		"\tAccessorChain Circle.r()",
		"\tEntry 1: Square s",
		"Fault AccessorFailure",
		"Fault MatchFailure",
		"Body case 0",
		"Break",
		"Body case 1",
		"Break",
		"End",
	}
	got := strings.Split(strings.TrimSuffix(trace.String(), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}
