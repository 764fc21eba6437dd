package anvil

import (
	"fmt"
	"io"
	"os"
	reflectPkg "reflect"
	"strings"

	"github.com/fatih/color"
)

type GraphInfo struct {
	Services []ServiceInfo
}

type ServiceInfo struct {
	Key          string
	Kind         string
	Dependencies []string
	Dependents   []string
}

const (
	KindClass  = "class"
	KindToken  = "token"
	KindString = "string"
	KindModule = "module"
	KindValue  = "value"
)

func kindOf(key any) string {
	switch key.(type) {
	case *Module:
		return KindModule
	case *Token:
		return KindToken
	case string:
		return KindString
	case reflectPkg.Type:
		return KindClass
	}
	return KindValue
}

// Graph describes every registered key with its recorded dependencies, in
// registration order.
func (c *Container) Graph() GraphInfo {
	g := c.internal.Graph()
	keys := c.internal.Keys()
	services := make([]ServiceInfo, 0, len(keys))

	for _, key := range keys {
		services = append(
			services, ServiceInfo{
				Key:          KeyName(key),
				Kind:         kindOf(key),
				Dependencies: keyNames(g.GetDependencies(key)),
				Dependents:   keyNames(g.GetDependents(key)),
			},
		)
	}

	return GraphInfo{Services: services}
}

func keyNames(keys []any) []string {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = KeyName(key)
	}
	return names
}

var kindColors = map[string]color.Attribute{
	KindClass:  color.FgGreen,
	KindToken:  color.FgCyan,
	KindString: color.FgYellow,
	KindModule: color.FgMagenta,
	KindValue:  color.FgWhite,
}

func (c *Container) PrintGraph() {
	c.FprintGraph(os.Stdout)
}

// FprintGraph writes one line per registered key. The marker is coloured by
// key kind unless colour is disabled on the container or by the terminal.
func (c *Container) FprintGraph(w io.Writer) {
	info := c.Graph()

	if len(info.Services) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	for _, svc := range info.Services {
		marker := color.New(kindColors[svc.Kind])
		if !c.config.color {
			marker.DisableColor()
		}

		_, _ = marker.Fprint(w, "●")
		if len(svc.Dependencies) == 0 {
			_, _ = fmt.Fprintf(w, " %s [%s]\n", svc.Key, svc.Kind)
		} else {
			_, _ = fmt.Fprintf(w, " %s [%s] ← %s\n", svc.Key, svc.Kind, strings.Join(svc.Dependencies, ", "))
		}
	}
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

func (c *Container) PrintGraphDOT() {
	c.FprintGraphDOT(os.Stdout)
}

func (c *Container) FprintGraphDOT(w io.Writer) {
	info := c.Graph()

	_, _ = fmt.Fprintln(w, "digraph dependencies {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, svc := range info.Services {
		shape := ""
		if svc.Kind == KindModule {
			shape = ", shape=folder"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", svc.Key, escapeLabel(svc.Key), shape)
	}

	_, _ = fmt.Fprintln(w)

	for _, svc := range info.Services {
		for _, dep := range svc.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", svc.Key, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "*", "")
	if idx := strings.LastIndex(s, "/"); idx != -1 {
		s = s[idx+1:]
	}
	return s
}
