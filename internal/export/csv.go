package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"linktrack-platform/internal/model"
)

// 导出文件的时间格式
const timeLayout = "2006-01-02 15:04:05"

// RosterCSV 渲染名单报表，列顺序是导出契约的一部分，不要调整
func RosterCSV(rows []RosterRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"User ID", "First Name", "Username", "Language", "First Click", "Join Status", "Activity Count"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.UserID, 10),
			row.FirstName,
			row.Username,
			row.Language,
			row.FirstClick.Format(timeLayout),
			row.JoinStatus,
			strconv.FormatInt(row.ActivityCount, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ActivityCSV 渲染活动报表，消息正文截取前 100 个字符作为预览
func ActivityCSV(records []model.ActivityRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"User ID", "Chat ID", "Message ID", "Owner Code", "Timestamp", "Username", "Chat Username", "Chat Title", "Message Preview"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range records {
		record := []string{
			strconv.FormatInt(rec.ActorID, 10),
			strconv.FormatInt(rec.ChatID, 10),
			strconv.FormatInt(rec.MessageRef, 10),
			rec.OwnerCode,
			rec.Timestamp.Format(timeLayout),
			rec.Username,
			rec.ChatHandle,
			rec.ChatTitle,
			preview(rec.MessageText),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewCap {
		return s
	}
	return string(runes[:previewCap])
}
