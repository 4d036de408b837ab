// cmd/vizctl/interactive.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/services"
	"github.com/spf13/cobra"
)

const interactiveHelp = `type <line|bar|pie>     切换图表类型
xaxis <text>            设置 X 轴标题
yaxis <text>            设置 Y 轴标题
point <i> <x> <y>       设置第 i 行（从 1 开始）
label <i> <text>        设置饼图第 i 个标签
value <i> <number>      设置饼图第 i 个数值
add / rm <i>            新增 / 删除一行
show                    显示当前表单
submit                  校验并生成图表
export <format>         导出 png, svg, pdf, json, csv, xlsx
help / quit`

func newInteractiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"i"},
		Short:   "Edit a chart form in the terminal, then submit and export it",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Println("🚀 DataVisualizer Console")
			fmt.Println("=================================")
			printBox("命令", interactiveHelp)

			form := services.NewFormState()
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) == 0 {
					continue
				}
				if fields[0] == "quit" || fields[0] == "exit" {
					fmt.Println("👋 再见")
					return nil
				}
				if err := runInteractive(cmd, s, form, fields); err != nil {
					fmt.Printf("❌ %v\n", err)
				}
			}
		},
	}
}

func runInteractive(cmd *cobra.Command, s *session, form *services.FormState, fields []string) error {
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	rest := func(i int) string {
		if i < len(fields) {
			return strings.Join(fields[i:], " ")
		}
		return ""
	}
	row := func(i int) (int, error) {
		n, err := strconv.Atoi(arg(i))
		if err != nil || n < 1 {
			return 0, fmt.Errorf("行号必须是从 1 开始的整数: %q", arg(i))
		}
		return n - 1, nil
	}

	var edits []services.FormEdit
	switch fields[0] {
	case "help":
		printBox("命令", interactiveHelp)
		return nil
	case "show":
		printForm(form)
		return nil
	case "type":
		edits = append(edits, services.SetChartType(models.ChartType(arg(1))))
	case "xaxis":
		edits = append(edits, services.UpdateXAxis(rest(1)))
	case "yaxis":
		edits = append(edits, services.UpdateYAxis(rest(1)))
	case "point":
		i, err := row(1)
		if err != nil {
			return err
		}
		edits = append(edits, services.UpdatePointX(i, arg(2)), services.UpdatePointY(i, arg(3)))
	case "label":
		i, err := row(1)
		if err != nil {
			return err
		}
		edits = append(edits, services.UpdateLabel(i, rest(2)))
	case "value":
		i, err := row(1)
		if err != nil {
			return err
		}
		edits = append(edits, services.UpdateValue(i, arg(2)))
	case "add":
		edits = append(edits, services.AddPoint())
	case "rm":
		i, err := row(1)
		if err != nil {
			return err
		}
		edits = append(edits, services.RemovePoint(i))
	case "submit":
		result, err := s.pipeline.SubmitForm(cmd.Context(), form)
		if err != nil {
			return quietError(err)
		}
		spec := result.Envelope.Spec()
		printBox(spec.Title, summarizeSpec(spec))
		return nil
	case "export":
		result, err := s.export(cmd, models.ParseExportFormat(arg(1)))
		if err != nil {
			return quietError(err)
		}
		fmt.Printf("📄 %s/%s (%d bytes)\n", outDir, result.Filename, result.Size)
		return nil
	default:
		return fmt.Errorf("未知命令 %q，输入 help 查看帮助", fields[0])
	}

	for _, edit := range edits {
		note, err := form.Apply(edit)
		if err != nil {
			return err
		}
		if note != nil {
			printNotification(*note)
		}
	}
	return nil
}

// quietError 非静默模式下提示已经输出过
func quietError(err error) error {
	if quiet {
		return err
	}
	return nil
}

func printForm(form *services.FormState) {
	input := form.Input()
	var b strings.Builder
	switch {
	case input.Pie != nil:
		for i := range input.Pie.Labels {
			fmt.Fprintf(&b, "%d. %s = %s\n", i+1, input.Pie.Labels[i], input.Pie.Values[i])
		}
	case input.XY != nil:
		fmt.Fprintf(&b, "X: %s  Y: %s\n", input.XY.XAxisLabel, input.XY.YAxisLabel)
		for i, p := range input.XY.Points {
			fmt.Fprintf(&b, "%d. (%s, %s)\n", i+1, p.X, p.Y)
		}
	}
	printBox(fmt.Sprintf("表单 · %s", form.ChartType()), strings.TrimRight(b.String(), "\n"))
}

func summarizeSpec(spec *models.ChartSpec) string {
	var b strings.Builder
	if spec.ChartType == models.ChartPie {
		for i, label := range spec.Labels {
			fmt.Fprintf(&b, "%s: %g\n", label, spec.Values[i])
		}
	} else {
		fmt.Fprintf(&b, "%s / %s\n", spec.XAxisTitle, spec.YAxisTitle)
		for i, x := range spec.X {
			fmt.Fprintf(&b, "%s: %g\n", x, spec.Y[i])
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func newHelpCenterCmd() *cobra.Command {
	var tutorials bool

	cmd := &cobra.Command{
		Use:   "faq [query]",
		Short: "Search the help center FAQs and tutorials",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			help := services.NewHelpService()

			if tutorials {
				for _, t := range help.SearchTutorials(query) {
					printBox(t.Title, t.Description+"\n"+t.Link)
				}
				return nil
			}

			faqs := help.SearchFAQs(query)
			if len(faqs) == 0 {
				fmt.Println("没有匹配的问题")
			}
			for _, f := range faqs {
				printBox(f.Question, f.Answer)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&tutorials, "tutorials", "t", false, "Search tutorials instead of FAQs")
	return cmd
}
