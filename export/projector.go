package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/linesmerrill/shift-handover/config"
	"github.com/linesmerrill/shift-handover/models"
)

const (
	notEntered       = "Chưa nhập"
	noHandoverNotice = "Không có bệnh nhân nặng cần bàn giao."
)

// Options carries deck metadata that does not come from the report
type Options struct {
	DepartmentTitle string
	Author          string
	Company         string
	Footer          string
	Logo            *Logo
}

// OptionsFromConfig builds Options from the export config section
func OptionsFromConfig(conf config.ExportConfig) Options {
	return Options{
		DepartmentTitle: conf.DepartmentTitle,
		Author:          conf.Author,
		Company:         conf.Company,
		Footer:          conf.Footer,
	}
}

// Project turns a report into the ordered slide specs of its deck. The
// surgery detail slides appear only when their list has items, the notes
// slide only when notes are not blank. The handover slide is always present.
func Project(r models.Report, opts Options) Deck {
	deck := Deck{
		Title:   "Báo cáo giao ban Khoa Ngoại - " + r.ReportDate,
		Author:  opts.Author,
		Company: opts.Company,
		Footer:  opts.Footer,
		Logo:    opts.Logo,
	}

	deck.Slides = append(deck.Slides,
		titleSlide(r, opts.DepartmentTitle),
		statisticsSlide(r),
		overviewSlide(r),
	)
	if len(r.ScheduledSurgeriesDetails) > 0 {
		deck.Slides = append(deck.Slides, surgerySlide(KindScheduledSurgeries, "Chi tiết mổ chương trình", r.ScheduledSurgeriesDetails))
	}
	if len(r.EmergencySurgeriesDetails) > 0 {
		deck.Slides = append(deck.Slides, surgerySlide(KindEmergencySurgeries, "Chi tiết mổ cấp cứu", r.EmergencySurgeriesDetails))
	}
	deck.Slides = append(deck.Slides, handoverSlide(r.SeverePatientHandovers))
	if strings.TrimSpace(r.AdditionalNotes) != "" {
		deck.Slides = append(deck.Slides, SlideSpec{
			Kind:  KindNotes,
			Title: "Ghi chú thêm",
			Body:  r.AdditionalNotes,
		})
	}
	return deck
}

func titleSlide(r models.Report, departmentTitle string) SlideSpec {
	return SlideSpec{
		Kind:  KindTitle,
		Title: departmentTitle,
		Lines: []string{
			"Tua trực ngày: " + DisplayDate(r.ReportDate),
			"Bác sĩ: " + orNotEntered(r.OnDutyTeam.Doctors) + "\nĐiều dưỡng: " + orNotEntered(r.OnDutyTeam.Nurses),
		},
	}
}

func statisticsSlide(r models.Report) SlideSpec {
	counters := []struct {
		label string
		value int
	}{
		{"Bệnh nhân cũ", r.PreviousPatients},
		{"Vào viện", r.NewAdmissions},
		{"Ra viện", r.Discharges},
		{"Chuyển khoa", r.TransfersOut},
		{"Khoa khác chuyển đến", r.TransfersIn},
		{"Chuyển viện", r.HospitalTransfersOut},
		{"Hiện có", r.CurrentPatients},
		{"Bệnh phòng khám", r.Outpatients},
		{"Tiểu phẫu/Bó bột", r.MinorSurgeries},
	}
	table := &TableSpec{Header: []string{"Hạng mục", "Số lượng"}}
	for _, c := range counters {
		table.Rows = append(table.Rows, Row{Cells: []string{c.label, strconv.Itoa(c.value)}})
	}
	return SlideSpec{Kind: KindStatistics, Title: "Tình hình người bệnh", Table: table}
}

func overviewSlide(r models.Report) SlideSpec {
	return SlideSpec{
		Kind:  KindSurgeryOverview,
		Title: "Báo cáo Phẫu thuật - Tổng quan",
		Table: &TableSpec{
			Header: []string{"Loại phẫu thuật", "Số ca"},
			Rows: []Row{
				{Cells: []string{"Mổ chương trình", strconv.Itoa(r.ScheduledSurgeriesCount)}},
				{Cells: []string{"Mổ cấp cứu", strconv.Itoa(r.EmergencySurgeriesCount)}},
				{Cells: []string{"Tổng cộng", strconv.Itoa(r.TotalSurgeries())}, Bold: true},
			},
		},
	}
}

func surgerySlide(kind SlideKind, title string, details []models.SurgeryDetail) SlideSpec {
	table := &TableSpec{Header: []string{"STT", "Tên bệnh nhân", "Năm sinh", "Chẩn đoán", "Xử trí", "Phẫu thuật viên"}}
	for i, s := range details {
		table.Rows = append(table.Rows, Row{Cells: []string{
			strconv.Itoa(i + 1), s.PatientName, s.BirthYear, s.Diagnosis, s.Procedure, s.Surgeon,
		}})
	}
	return SlideSpec{Kind: kind, Title: title, Table: table}
}

func handoverSlide(handovers []models.SeverePatientHandover) SlideSpec {
	slide := SlideSpec{Kind: KindHandover, Title: "Bệnh nặng và Bàn giao kíp sau"}
	if len(handovers) == 0 {
		slide.Message = noHandoverNotice
		return slide
	}
	table := &TableSpec{Header: []string{"STT", "Họ tên", "Năm sinh", "Chẩn đoán", "Tình hình & Bàn giao"}}
	for i, h := range handovers {
		table.Rows = append(table.Rows, Row{Cells: []string{
			strconv.Itoa(i + 1), h.PatientName, h.BirthYear, h.Diagnosis, h.CurrentStatus,
		}})
	}
	slide.Table = table
	return slide
}

// DisplayDate formats an ISO date the Vietnamese way, 2024-06-01 -> 1/6/2024.
// Anything that is not an ISO date is returned as is.
func DisplayDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("2/1/2006")
}

func orNotEntered(s string) string {
	if strings.TrimSpace(s) == "" {
		return notEntered
	}
	return s
}
