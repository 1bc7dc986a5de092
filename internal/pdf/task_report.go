package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"taskhub/internal/models"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	TaskReport(w io.Writer, data TaskReportData) error
}

type TaskReportData struct {
	Owner       models.UserSummary
	Tasks       []models.Task
	GeneratedAt time.Time
}

// ReportGenerator renders reports with a TTF font when FontPath is set and
// with the core Helvetica font otherwise.
type ReportGenerator struct {
	FontPath string // например "assets/fonts/DejaVuSans.ttf"
	fontName string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	name := "Helvetica"
	if fontPath != "" {
		name = "DejaVu"
	}
	return &ReportGenerator{FontPath: fontPath, fontName: name}
}

type column struct {
	title string
	width float64
	value func(t models.Task) string
}

var taskColumns = []column{
	{"#", 12, func(t models.Task) string { return fmt.Sprintf("%d", t.ID) }},
	{"Title", 78, func(t models.Task) string { return t.Title }},
	{"Priority", 25, func(t models.Task) string { return string(t.Priority) }},
	{"Status", 28, func(t models.Task) string { return string(t.Status) }},
	{"Due", 27, func(t models.Task) string {
		if t.DueDate == nil {
			return "-"
		}
		return t.DueDate.Format("02.01.2006")
	}},
}

func (g *ReportGenerator) TaskReport(w io.Writer, data TaskReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task report", false)
	pdf.SetAuthor("TaskHub", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	tr := g.translator(pdf)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 16)
	pdf.CellFormat(0, 10, "Task report", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	sub := fmt.Sprintf("%s <%s>, %s", data.Owner.Username, data.Owner.Email, data.GeneratedAt.Format("02.01.2006 15:04"))
	pdf.CellFormat(0, 7, tr(sub), "", 1, "C", false, 0, "")
	g.hr(pdf)

	// ===== Таблица
	pdf.SetFont(g.fontName, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range taskColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.fontName, "", 10)
	for _, t := range data.Tasks {
		for _, c := range taskColumns {
			pdf.CellFormat(c.width, 7, tr(fit(pdf, c.value(t), c.width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(data.Tasks) == 0 {
		pdf.CellFormat(0, 8, "No tasks", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total: %d", len(data.Tasks)), "", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// fit shortens s with an ellipsis until it fits width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 3)
}

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// translator maps UTF-8 to cp1252 for the core font; TTF fonts take UTF-8 as is.
func (g *ReportGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}
