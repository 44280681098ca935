package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/services"
)

var xlsxHeaders = []string{"nama", "no_telp", "alamat", "catatan", "points", "total_spent"}

// Export: GET /member/export downloads current members plus a ranking sheet of the
// top spenders with a bar chart.
func (h *MemberHandler) Export(w http.ResponseWriter, r *http.Request) {
	var list []models.Member
	if err := h.DB.Order("nama").Find(&list).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_members", nil)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Members"
	f.SetSheetName("Sheet1", sheet)
	for col, head := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, head)
	}
	levelCell, _ := excelize.CoordinatesToCellName(len(xlsxHeaders)+1, 1)
	f.SetCellValue(sheet, levelCell, "level")
	for i, m := range list {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.Nama)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), m.NoTelp)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), m.Alamat)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), m.Catatan)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), m.Points)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), m.TotalSpent)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), services.LevelForPoints(m.Points))
	}

	ranked := make([]models.Member, len(list))
	copy(ranked, list)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TotalSpent > ranked[j].TotalSpent })
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	rank := "Ranking"
	if _, err := f.NewSheet(rank); err == nil {
		f.SetCellValue(rank, "A1", "nama")
		f.SetCellValue(rank, "B1", "total_spent")
		for i, m := range ranked {
			row := i + 2
			f.SetCellValue(rank, fmt.Sprintf("A%d", row), m.Nama)
			f.SetCellValue(rank, fmt.Sprintf("B%d", row), m.TotalSpent)
		}
		if len(ranked) > 0 {
			last := len(ranked) + 1
			_ = f.AddChart(rank, "D2", &excelize.Chart{
				Type:  excelize.Bar,
				Title: []excelize.RichTextRun{{Text: "Top Member"}},
				Series: []excelize.ChartSeries{{
					Name:       fmt.Sprintf("%s!$B$1", rank),
					Categories: fmt.Sprintf("%s!$A$2:$A$%d", rank, last),
					Values:     fmt.Sprintf("%s!$B$2:$B$%d", rank, last),
				}},
			})
		}
	}

	name := "member_" + time.Now().Format("20060102_150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		// headers are already gone at this point, just log
		log.Printf("[Member] export write: %v", err)
	}
}

// Template: GET /member/template downloads the import template with example rows.
func (h *MemberHandler) Template(w http.ResponseWriter, r *http.Request) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Members"
	f.SetSheetName("Sheet1", sheet)
	for col, head := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, head)
	}
	examples := [][]any{
		{"Budi Santoso", "081234567890", "Jl. Merdeka No. 1", "Pelanggan tetap", 0, 0},
		{"Siti Aminah", "082345678901", "Jl. Sudirman No. 2", "", 0, 0},
		{"Agus Wijaya", "083456789012", "", "", 0, 0},
	}
	for i, row := range examples {
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, val)
		}
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="template_member.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Printf("[Member] template write: %v", err)
	}
}

// Import: POST /member/import accepts a multipart upload. Rows match existing members
// by phone first, then by name; matches are updated, the rest inserted.
func (h *MemberHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		h.fail(w, r, "File tidak valid")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, "File tidak ditemukan")
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		h.fail(w, r, "File Excel tidak dapat dibaca")
		return
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil || len(rows) < 2 {
		h.fail(w, r, "File tidak berisi data")
		return
	}

	// Map header positions so column order in the upload does not matter.
	idx := map[string]int{}
	for col, head := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(head))] = col
	}
	if _, ok := idx["nama"]; !ok {
		h.fail(w, r, "Kolom nama tidak ditemukan")
		return
	}
	cell := func(row []string, key string) string {
		col, ok := idx[key]
		if !ok || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	var added, updated int
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows[1:] {
			nama := cell(row, "nama")
			if nama == "" {
				continue
			}
			noTelp := cell(row, "no_telp")
			points, _ := strconv.Atoi(cell(row, "points"))
			totalSpent, _ := strconv.ParseFloat(cell(row, "total_spent"), 64)

			var existing models.Member
			found := false
			if noTelp != "" {
				if tx.Where("no_telp = ?", noTelp).First(&existing).Error == nil {
					found = true
				}
			}
			if !found {
				if tx.Where("nama = ?", nama).First(&existing).Error == nil {
					found = true
				}
			}
			if found {
				up := map[string]any{
					"nama":    nama,
					"no_telp": noTelp,
					"alamat":  cell(row, "alamat"),
					"catatan": cell(row, "catatan"),
				}
				if points > 0 {
					up["points"] = points
				}
				if totalSpent > 0 {
					up["total_spent"] = totalSpent
				}
				if err := tx.Model(&existing).Updates(up).Error; err != nil {
					return err
				}
				updated++
				continue
			}
			m := models.Member{
				Nama:       nama,
				NoTelp:     noTelp,
				Alamat:     cell(row, "alamat"),
				Catatan:    cell(row, "catatan"),
				Points:     points,
				TotalSpent: totalSpent,
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_import_members", nil)
		return
	}

	msg := fmt.Sprintf("Import selesai: %d ditambah, %d diperbarui.", added, updated)
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": msg, "added": added, "updated": updated})
		return
	}
	middleware.Flash(w, msg)
	http.Redirect(w, r, "/member", http.StatusSeeOther)
}
