package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nihal711/noah/internal/repository"
	pkgerrors "github.com/nihal711/noah/pkg/errors"
)

// ── export errors ──

var (
	ErrExportNoRows       = pkgerrors.New(pkgerrors.KindNotFound, 13101, "no leave requests to export")
	ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindInternal, 13102, "failed to generate the spreadsheet")
)

// ExportService spreadsheet exports for HR.
// The workbook comes back as a buffer; the handler sets the download headers.
type ExportService interface {
	ExportLeaveRequests(ctx context.Context, caller Caller, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var leaveExportHeader = []string{
	"Employee ID", "Full Name", "Department", "Leave Type", "Start Date", "End Date",
	"Days", "Status", "Reason", "Approver Comments", "Requested At",
}

// ═══════════════════════════════════════════════════════════
// ExportLeaveRequests
// ═══════════════════════════════════════════════════════════
//
// One sheet, one row per request, newest first. status filters when non-empty.

func (s *exportService) ExportLeaveRequests(ctx context.Context, caller Caller, status string) (*bytes.Buffer, string, error) {
	if !caller.IsHR() {
		return nil, "", ErrForbidden
	}

	items, _, err := s.repo.LeaveRequest.List(ctx, &repository.RequestFilter{
		Status:   status,
		WithUser: true,
	})
	if err != nil {
		s.logger.Error("list leave requests for export failed", zap.Error(err))
		return nil, "", err
	}
	if len(items) == 0 {
		return nil, "", ErrExportNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leave Requests"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	widths := []float64{14, 24, 18, 14, 12, 12, 8, 10, 40, 40, 22}
	for i, w := range widths {
		col := colName(i)
		_ = f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range leaveExportHeader {
		_ = f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	_ = f.SetCellStyle(sheetName, "A1", cell(colName(len(leaveExportHeader)-1), 1), headerStyle)

	for i := range items {
		lr := &items[i]
		row := i + 2

		employeeID, fullName, department := "", "", ""
		if lr.User != nil {
			employeeID, fullName, department = lr.User.EmployeeID, lr.User.FullName, lr.User.Department
		}
		comments := ""
		if lr.ApproverComments != nil {
			comments = *lr.ApproverComments
		}
		days, _ := lr.DaysRequested.Float64()

		values := []interface{}{
			employeeID, fullName, department, lr.LeaveType,
			formatDate(lr.StartDate), formatDate(lr.EndDate),
			days, lr.Status, lr.Reason, comments,
			lr.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			_ = f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("leave requests exported", zap.Int("rows", len(items)), zap.String("by", caller.UserID))

	filename := fmt.Sprintf("leave_requests_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ── helpers ──

// colName zero-based column index to letters
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
