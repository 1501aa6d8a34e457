package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shiftswap/internal/swap"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入。
// 内容与列表视图一致：特权角色导出全部，普通用户导出与自己相关的申请（分两个 Sheet）。
type ExportService interface {
	ExportSwapRequests(ctx context.Context, viewer swap.Viewer, status string) (*bytes.Buffer, string, error)
}

type exportService struct {
	store  *swap.Store
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(store *swap.Store, logger *zap.Logger) ExportService {
	return &exportService{store: store, logger: logger}
}

var exportHeaders = []string{
	"申请ID", "申请人", "对方",
	"让出日期", "让出时间", "让出班次",
	"换入日期", "换入时间", "换入班次",
	"状态", "创建时间",
}

func (s *exportService) ExportSwapRequests(_ context.Context, viewer swap.Viewer, status string) (*bytes.Buffer, string, error) {
	filter, err := swap.ParseFilter(status)
	if err != nil {
		return nil, "", err
	}
	res := swap.Apply(s.store.Snapshot(), filter, viewer)

	f := excelize.NewFile()
	defer f.Close()

	type sheet struct {
		name string
		rows []swap.SwapRequest
	}
	var sheets []sheet
	if res.Partitioned {
		sheets = []sheet{
			{"待我审批", res.Partition.Incoming},
			{"我的申请", res.Partition.Outgoing},
		}
	} else {
		sheets = []sheet{{"全部申请", res.All}}
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				s.logger.Error("重命名 Sheet 失败", zap.Error(err))
				return nil, "", ErrExportGenerateFail
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			s.logger.Error("创建 Sheet 失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		s.writeSheet(f, sh.name, sh.rows, headerStyle)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("swap_requests_%s_%s.xlsx", filter, time.Now().Format("20060102"))
	return buf, filename, nil
}

func (s *exportService) writeSheet(f *excelize.File, name string, rows []swap.SwapRequest, headerStyle int) {
	for i, h := range exportHeaders {
		f.SetCellValue(name, cell(colName(i), 1), h)
	}
	f.SetCellStyle(name, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)
	f.SetColWidth(name, "A", "A", 38)
	f.SetColWidth(name, "B", "C", 16)
	f.SetColWidth(name, "D", "I", 14)
	f.SetColWidth(name, "J", "K", 20)

	for i, r := range rows {
		row := i + 2
		values := []interface{}{
			r.ID, r.Requester.Name, r.Counterparty.Name,
			r.GivenShift.Date, r.GivenShift.TimeRange, r.GivenShift.ShiftType,
			r.TakenShift.Date, r.TakenShift.TimeRange, r.TakenShift.ShiftType,
			strings.ToUpper(string(r.Status)), r.CreatedAt.UTC().Format(time.RFC3339),
		}
		for j, v := range values {
			f.SetCellValue(name, cell(colName(j), row), v)
		}
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
