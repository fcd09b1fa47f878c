package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"shellkit/internal/console"
	"shellkit/internal/shell"
)

// Action is one of the d/b/i/t shortcuts.
type Action string

const (
	Dev     Action = "d"
	Build   Action = "b"
	Install Action = "i"
	Test    Action = "t"
)

// ErrNoProject is returned when dir has none of the supported marker files.
var ErrNoProject = errors.New("no supported project file found (package.json, pom.xml, pubspec.yaml)")

// ParseAction accepts the shortcut letter or the long name.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "d", "dev":
		return Dev, nil
	case "b", "build":
		return Build, nil
	case "i", "install":
		return Install, nil
	case "t", "test":
		return Test, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Plan is what a shortcut resolves to in a given directory.
type Plan struct {
	Kind    Kind
	Manager Manager // set for Node projects only
	Banner  string
	Steps   [][]string
}

// Planner resolves shortcuts against the filesystem and PATH.
type Planner struct {
	Fs       afero.Fs
	LookPath LookPathFunc
}

// PlanFor resolves action in dir. args are package names for Install and
// extra script arguments for Dev and Test.
func (p Planner) PlanFor(action Action, dir string, args []string) (Plan, error) {
	kind, ok := KindOf(p.Fs, dir)
	if !ok {
		return Plan{}, ErrNoProject
	}

	switch kind {
	case Node:
		return nodePlan(action, Detect(p.Fs, dir, p.LookPath), args), nil
	case Maven:
		return mavenPlan(action), nil
	default:
		return flutterPlan(action, args), nil
	}
}

func nodePlan(action Action, pm Manager, args []string) Plan {
	plan := Plan{Kind: Node, Manager: pm}
	pmName := string(pm)

	// script runs a package.json script; yarn and pnpm accept the bare name.
	script := func(name string) []string {
		var argv []string
		switch pm {
		case PNPM, Yarn:
			argv = []string{pmName, name}
		default:
			argv = []string{pmName, "run", name}
		}
		if len(args) > 0 {
			if pm == NPM {
				argv = append(argv, "--")
			}
			argv = append(argv, args...)
		}
		return argv
	}

	switch action {
	case Dev:
		plan.Banner = "🚀 Starting Node.js dev server..."
		plan.Steps = [][]string{script("dev")}
	case Build:
		plan.Banner = "📦 Building Node.js project..."
		args = nil
		plan.Steps = [][]string{script("build")}
	case Install:
		if len(args) > 0 {
			plan.Banner = "🔍 Installing dependencies: " + strings.Join(args, " ")
			verb := "add"
			if pm == NPM {
				verb = "install"
			}
			plan.Steps = [][]string{append([]string{pmName, verb}, args...)}
		} else {
			plan.Banner = "🔍 Installing all dependencies..."
			plan.Steps = [][]string{{pmName, "install"}}
		}
	case Test:
		plan.Banner = "🧪 Running tests..."
		switch pm {
		case Bun:
			// `bun test` is bun's own runner, not the package.json script.
			plan.Steps = [][]string{append([]string{"bun", "test"}, args...)}
		default:
			plan.Steps = [][]string{script("test")}
		}
	}
	return plan
}

func mavenPlan(action Action) Plan {
	plan := Plan{Kind: Maven}
	switch action {
	case Dev:
		plan.Banner = "🚀 Starting Java dev server..."
		plan.Steps = [][]string{{"nodemon", "-w", "./controller/**/*", "-e", "java", "-x", "mvn spring-boot:run"}}
	case Build:
		plan.Banner = "📦 Building Java project..."
		plan.Steps = [][]string{{"mvn", "clean", "package"}}
	case Install:
		plan.Banner = "🔍 Installing Maven dependencies..."
		plan.Steps = [][]string{{"mvn", "clean", "install"}}
	case Test:
		plan.Banner = "🧪 Running Maven tests..."
		plan.Steps = [][]string{{"mvn", "test"}}
	}
	return plan
}

func flutterPlan(action Action, args []string) Plan {
	plan := Plan{Kind: Flutter}
	switch action {
	case Dev:
		plan.Banner = "🚀 Starting Flutter..."
		plan.Steps = [][]string{{"flutter", "run"}}
	case Build:
		plan.Banner = "📦 Building Flutter project..."
		plan.Steps = [][]string{{"flutter", "clean"}, {"flutter", "build"}}
	case Install:
		if len(args) > 0 {
			plan.Banner = "🔍 Adding dependencies: " + strings.Join(args, " ")
			plan.Steps = [][]string{append([]string{"flutter", "pub", "add"}, args...)}
		} else {
			plan.Banner = "🔍 Fetching Flutter dependencies..."
			plan.Steps = [][]string{{"flutter", "pub", "get"}}
		}
	case Test:
		plan.Banner = "🧪 Running Flutter tests..."
		plan.Steps = [][]string{{"flutter", "test"}}
	}
	return plan
}

// Run prints the banner and executes the steps in dir one after another.
// It returns the exit code of the first failing step, or 0.
func Run(ctx context.Context, r shell.Runner, con *console.Console, dir string, plan Plan) (int, error) {
	con.Println(plan.Banner)
	for _, step := range plan.Steps {
		con.Command(step...)
		code, err := r.Interactive(ctx, dir, step...)
		if err != nil {
			return code, fmt.Errorf("run %s: %w", step[0], err)
		}
		if code != 0 {
			return code, nil
		}
	}
	return 0, nil
}
