package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tokosembako/kasir-pos/internal/models"
)

func TestMemberCreateAndListJSON(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	h := NewMemberHandler(db)

	form := url.Values{"nama": {"Budi"}, "no_telp": {"0812"}}
	req := httptest.NewRequest(http.MethodPost, "/member/tambah", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req = asUser(req, kasir)
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	req2 := httptest.NewRequest(http.MethodGet, "/member?q=bud", nil)
	req2.Header.Set("Accept", "application/json")
	req2 = asUser(req2, kasir)
	w2 := httptest.NewRecorder()
	h.List(w2, req2)
	var payload struct {
		Items []struct {
			Nama  string `json:"nama"`
			Level string `json:"level"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 1 || payload.Items[0].Nama != "Budi" || payload.Items[0].Level != "Bronze" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestMemberDeleteKeepsTransactions(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	m := models.Member{Nama: "Budi"}
	db.Create(&m)
	mid := m.ID
	trx := models.Transaksi{KodeTransaksi: "TRX1", Tanggal: time.Now(), Total: 10000, Bayar: 10000, MemberID: &mid}
	db.Create(&trx)
	h := NewMemberHandler(db)

	req := httptest.NewRequest(http.MethodPost, "/member/hapus?id=1", nil)
	req.Header.Set("Accept", "application/json")
	req = asUser(req, admin)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var after models.Transaksi
	if err := db.First(&after, trx.ID).Error; err != nil {
		t.Fatalf("transaction must survive member deletion: %v", err)
	}
	if after.MemberID != nil {
		t.Fatal("expected member reference nulled")
	}
}

func TestMemberTransactionsTotals(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	m := models.Member{Nama: "Siti", Points: 1200}
	db.Create(&m)
	mid := m.ID
	db.Create(&models.Transaksi{KodeTransaksi: "TRX1", Tanggal: time.Now(), Total: 10000, Bayar: 10000, MemberID: &mid})
	db.Create(&models.Transaksi{KodeTransaksi: "TRX2", Tanggal: time.Now(), Total: 15000, Bayar: 15000, MemberID: &mid})
	h := NewMemberHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/member/transaksi?id=1", nil)
	req.Header.Set("Accept", "application/json")
	req = asUser(req, kasir)
	w := httptest.NewRecorder()
	h.Transactions(w, req)
	var payload struct {
		Member struct {
			Level string `json:"level"`
		} `json:"member"`
		TotalTransaksi int     `json:"total_transaksi"`
		TotalBelanja   float64 `json:"total_belanja"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.TotalTransaksi != 2 || payload.TotalBelanja != 25000 {
		t.Fatalf("unexpected totals %+v", payload)
	}
	if payload.Member.Level != "Silver" {
		t.Fatalf("expected Silver got %s", payload.Member.Level)
	}
}

func buildImportFile(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	headers := []string{"nama", "no_telp", "alamat", "catatan", "points", "total_spent"}
	for col, head := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue("Sheet1", cell, head)
	}
	for i, row := range rows {
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue("Sheet1", cell, val)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return &buf
}

func TestMemberImportInsertsAndUpdates(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	db.Create(&models.Member{Nama: "Budi Lama", NoTelp: "0812"})
	h := NewMemberHandler(db)

	file := buildImportFile(t, [][]any{
		{"Budi Baru", "0812", "Jl. A", "", 5, 60000},
		{"Siti", "0813", "", "", 0, 0},
		{"", "0899", "", "", 0, 0}, // no name, skipped
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "member.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(file.Bytes()); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/member/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req = asUser(req, kasir)
	w := httptest.NewRecorder()
	h.Import(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var res struct {
		Message string `json:"message"`
		Added   int    `json:"added"`
		Updated int    `json:"updated"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Added != 1 || res.Updated != 1 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if res.Message != "Import selesai: 1 ditambah, 1 diperbarui." {
		t.Fatalf("unexpected message %q", res.Message)
	}

	// Phone match wins: the existing member was renamed, not duplicated.
	var updated models.Member
	if err := db.Where("no_telp = ?", "0812").First(&updated).Error; err != nil {
		t.Fatalf("updated member: %v", err)
	}
	if updated.Nama != "Budi Baru" || updated.Points != 5 {
		t.Fatalf("unexpected member %+v", updated)
	}
	var total int64
	db.Model(&models.Member{}).Count(&total)
	if total != 2 {
		t.Fatalf("expected 2 members got %d", total)
	}
}

func TestMemberExportProducesWorkbook(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	db.Create(&models.Member{Nama: "Budi", NoTelp: "0812", Points: 1500, TotalSpent: 150000})
	h := NewMemberHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/member/export", nil)
	req = asUser(req, kasir)
	w := httptest.NewRecorder()
	h.Export(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("unexpected content type %s", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Members")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "Budi" {
		t.Fatalf("unexpected rows %v", rows)
	}
	// Level column is derived, not stored.
	if rows[1][6] != "Silver" {
		t.Fatalf("expected Silver level got %v", rows[1])
	}
	if _, err := f.GetRows("Ranking"); err != nil {
		t.Fatalf("ranking sheet missing: %v", err)
	}
}

func TestMemberTemplateHasHeadersAndExamples(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	h := NewMemberHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/member/template", nil)
	req = asUser(req, kasir)
	w := httptest.NewRecorder()
	h.Template(w, req)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Members")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 examples got %d rows", len(rows))
	}
	if rows[0][0] != "nama" || rows[0][5] != "total_spent" {
		t.Fatalf("unexpected header %v", rows[0])
	}
}
