package beanpod

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type GraphInfo struct {
	Beans []BeanInfo
}

type BeanInfo struct {
	ID           string
	Dependencies []string
	Dependents   []string
	Instantiated bool
	Scope        string
	Lazy         bool
}

// Graph describes the constructor dependencies between definitions in
// registration order.
func (c *Container) Graph() GraphInfo {
	g := c.internal.Graph()
	ids := c.internal.IDs()
	beans := make([]BeanInfo, 0, len(ids))

	for _, id := range ids {
		def, err := c.internal.Definition(id)
		if err != nil {
			continue
		}

		beans = append(
			beans, BeanInfo{
				ID:           id,
				Dependencies: g.GetDependencies(id),
				Dependents:   g.GetDependents(id),
				Instantiated: c.internal.Instantiated(id),
				Scope:        def.Scope.String(),
				Lazy:         def.Lazy,
			},
		)
	}

	return GraphInfo{Beans: beans}
}

var (
	readyColor   = color.New(color.FgGreen, color.Bold)
	pendingColor = color.New(color.Faint)
	tagColor     = color.New(color.FgCyan)
)

func (c *Container) PrintGraph() {
	c.FprintGraph(os.Stdout)
}

func (c *Container) FprintGraph(w io.Writer) {
	info := c.Graph()

	if len(info.Beans) == 0 {
		_, _ = fmt.Fprintln(w, "(empty container)")
		return
	}

	for _, bean := range info.Beans {
		status := pendingColor.Sprint("○")
		if bean.Instantiated {
			status = readyColor.Sprint("●")
		}

		var tags []string
		if bean.Scope != Singleton.String() {
			tags = append(tags, bean.Scope)
		}
		if bean.Lazy {
			tags = append(tags, "lazy")
		}
		label := bean.ID
		if len(tags) > 0 {
			label += " " + tagColor.Sprintf("[%s]", strings.Join(tags, ","))
		}

		if len(bean.Dependencies) == 0 {
			_, _ = fmt.Fprintf(w, "%s %s\n", status, label)
		} else {
			_, _ = fmt.Fprintf(w, "%s %s ← %s\n", status, label, strings.Join(bean.Dependencies, ", "))
		}
	}
}

func (c *Container) SprintGraph() string {
	var sb strings.Builder
	c.FprintGraph(&sb)
	return sb.String()
}

func (c *Container) FprintGraphDOT(w io.Writer) {
	info := c.Graph()

	_, _ = fmt.Fprintln(w, "digraph beans {")
	_, _ = fmt.Fprintln(w, "  rankdir=LR;")
	_, _ = fmt.Fprintln(w, "  node [shape=box];")

	for _, bean := range info.Beans {
		style := ""
		switch {
		case bean.Instantiated:
			style = ", style=filled, fillcolor=lightblue"
		case bean.Scope != Singleton.String():
			style = ", style=dashed"
		}
		_, _ = fmt.Fprintf(w, "  %q [label=%q%s];\n", bean.ID, bean.ID, style)
	}

	_, _ = fmt.Fprintln(w)

	for _, bean := range info.Beans {
		for _, dep := range bean.Dependencies {
			_, _ = fmt.Fprintf(w, "  %q -> %q;\n", bean.ID, dep)
		}
	}

	_, _ = fmt.Fprintln(w, "}")
}

func (c *Container) SprintGraphDOT() string {
	var sb strings.Builder
	c.FprintGraphDOT(&sb)
	return sb.String()
}
