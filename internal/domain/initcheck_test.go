package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vel.dev/pkg/velc/internal/model"
	"vel.dev/pkg/velc/internal/parser"
	"vel.dev/pkg/velc/internal/registry"
)

// checkInit parses src and runs the initialization checker over it.
func checkInit(t *testing.T, src string) []model.Diagnostic {
	t.Helper()

	prog, err := parser.Parse(src)
	require.NoError(t, err)

	return NewInitChecker(registry.FromProgram(prog)).Check(prog)
}

func requireOnlyCode(t *testing.T, diags []model.Diagnostic, code model.Code) {
	t.Helper()

	for _, d := range diags {
		require.Equal(t, code, d.Code, "unexpected diagnostic: %s", d)
	}
}

func TestInitChecker_ReadBeforeAssignment(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int count;
    int total;
    total <- count + 1;
    return total;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, model.CodeUninitialized, diags[0].Code)
	require.Equal(t, "count", diags[0].Subject)
	require.Equal(t, 5, diags[0].Line)
	require.False(t, diags[0].MayBeUninitialized)

	require.NotNil(t, diags[0].Decl)
	require.Equal(t, "count", diags[0].Decl.Name)
	require.Equal(t, 3, diags[0].Decl.Line)
}

func TestInitChecker_ReadAfterWholeAssignment(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x;
    x <- 5;
    return x;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_DeclWithInitializer(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x <- 5;
    return x;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_ParametersAreInitialized(t *testing.T) {
	diags := checkInit(t, `
int double(int n) {
    return n + n;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_GlobalsSeededInitialized(t *testing.T) {
	// The C target zero-initializes statics, so a bare global is
	// readable.
	diags := checkInit(t, `
int counter;

int main() {
    return counter;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_StructFieldByFieldPromotion(t *testing.T) {
	diags := checkInit(t, `
struct Point {
    int x;
    int y;
}

int use(Point q) {
    return 0;
}

int main() {
    Point p;
    p.y <- 2;
    p.x <- 1;
    return use(p);
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_StructFieldReadBeforeAssignment(t *testing.T) {
	diags := checkInit(t, `
struct Config {
    int port;
    int timeout;
}

int main() {
    Config cfg;
    cfg.port <- 8080;
    return cfg.timeout;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, model.CodeUninitialized, diags[0].Code)
	require.Equal(t, "cfg.timeout", diags[0].Subject)
}

func TestInitChecker_WholeStructAssignmentCoversFields(t *testing.T) {
	diags := checkInit(t, `
struct Point {
    int x;
    int y;
}

int main() {
    Point p;
    Point q;
    q.x <- 1;
    q.y <- 2;
    p <- q;
    return p.x;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_PartialStructRead(t *testing.T) {
	diags := checkInit(t, `
struct Point {
    int x;
    int y;
}

int main() {
    Point p;
    p.x <- 1;
    int y <- p.x + p.y;
    return y;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, "p.y", diags[0].Subject)
}

func TestInitChecker_IfWithoutElseRestores(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x;
    int y;
    if (cond) {
        x <- 1;
    }
    y <- x;
    return y;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, "x", diags[0].Subject)
	require.Equal(t, 8, diags[0].Line)
}

func TestInitChecker_IfElseKeepsPostBranchState(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x;
    int y;
    if (cond) {
        x <- 1;
    } else {
        x <- 2;
    }
    y <- x;
    return y;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_WhileRestores(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x;
    int y;
    while (y < 10) {
        x <- 1;
    }
    y <- x;
    return y;
}
`)

	requireOnlyCode(t, diags, model.CodeUninitialized)

	subjects := make([]string, 0, len(diags))
	for _, d := range diags {
		subjects = append(subjects, d.Subject)
	}

	// The condition reads y before anything assigned it, and the
	// body's write to x is rolled back.
	require.Contains(t, subjects, "y")
	require.Contains(t, subjects, "x")
}

func TestInitChecker_DeterministicForMerges(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int i;
    int x;
    int y;
    for (i <- 0; i < 4; i <- i + 1) {
        x <- 1;
    }
    y <- x;
    return y;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_VariableBoundForRestores(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int i;
    int n <- 3;
    int x;
    int y;
    for (i <- 0; i < n; i <- i + 1) {
        x <- 1;
    }
    y <- x;
    return y;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, "x", diags[0].Subject)
}

func TestInitChecker_DeterministicForKeepsPreLoopFields(t *testing.T) {
	// Fields assigned before a proven loop survive the merge even if
	// the body never touches them.
	diags := checkInit(t, `
struct Point {
    int x;
    int y;
}

int main() {
    int i;
    Point p;
    p.x <- 1;
    for (i <- 0; i < 4; i <- i + 1) {
        p.y <- 2;
    }
    return p.x + p.y;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_StringPropertiesGatedOnInit(t *testing.T) {
	diags := checkInit(t, `
int main() {
    string<64> s;
    int n <- s.length;
    s <- "hi";
    int m <- s.capacity;
    return n + m;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, "s.length", diags[0].Subject)
}

func TestInitChecker_SyntheticPropertyNeverFlagged(t *testing.T) {
	// Bit width is a compile-time constant of the type, not a runtime
	// value.
	diags := checkInit(t, `
int main() {
    int x;
    return x.bits;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_ChainThroughStructField(t *testing.T) {
	// p.name.length resolves to the struct field check: the chain
	// passes through a possibly-uninitialized string field.
	diags := checkInit(t, `
struct User {
    string<32> name;
}

int main() {
    User p;
    return p.name.length;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, "p.name", diags[0].Subject)
}

func TestInitChecker_CallArgumentSuppression(t *testing.T) {
	// A plain identifier passed to a call may be an output parameter:
	// it is not read-checked and counts as initialized afterwards.
	diags := checkInit(t, `
int main() {
    int x;
    int y;
    fill(x);
    y <- x;
    return y;
}
`)
	require.Empty(t, diags)
}

func TestInitChecker_NonIdentArgumentsStillChecked(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x;
    use(x + 1);
    return 0;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, "x", diags[0].Subject)
}

func TestInitChecker_ShadowingInnerBlock(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x <- 1;
    {
        int x;
        int y <- x;
    }
    return x;
}
`)

	require.Len(t, diags, 1)
	require.Equal(t, "x", diags[0].Subject)
	require.Equal(t, 6, diags[0].Line)
	require.Equal(t, 5, diags[0].Decl.Line)
}

func TestInitChecker_EveryViolationReported(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int a;
    int b;
    int x;
    x <- a;
    x <- b;
    return x;
}
`)

	require.Len(t, diags, 2)
	require.Equal(t, "a", diags[0].Subject)
	require.Equal(t, "b", diags[1].Subject)
}

func TestInitChecker_DiagnosticString(t *testing.T) {
	diags := checkInit(t, `
int main() {
    int x;
    return x;
}
`)

	require.Len(t, diags, 1)
	require.Contains(t, diags[0].String(), "error[E0381]")
	require.Contains(t, diags[0].String(), "4:")
}
