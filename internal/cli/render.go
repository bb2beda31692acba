package cli

import (
	"strconv"
	"time"

	"github.com/shaiso/Rectify/internal/correction"
	"github.com/shaiso/Rectify/internal/domain"
)

// summaryTable строит итог запуска: одна строка на task group.
func summaryTable(resp correction.Response) ([]string, [][]string) {
	headers := []string{"GROUP_ID", "NAME", "DRY_RUN", "CHUNKS", "ITEMS", "SUCCESS", "ERROR", "TIME_MS", "STATUS"}

	if len(resp.Data) == 0 {
		return headers, [][]string{{"-", "-", "-", "0", "0", "0", "0", strconv.FormatInt(resp.TimeTakenMs, 10), resp.Status}}
	}

	first := resp.Data[0]
	counts := domain.CountByStatus(resp.Data)
	row := []string{
		first.TaskGroupID,
		first.Name,
		strconv.FormatBool(first.IsDryRun),
		strconv.Itoa(len(resp.Data)),
		strconv.Itoa(len(domain.MergeItems(resp.Data))),
		strconv.Itoa(counts[domain.TaskItemStatusSuccess]),
		strconv.Itoa(counts[domain.TaskItemStatusError]),
		strconv.FormatInt(resp.TimeTakenMs, 10),
		resp.Status,
	}
	return headers, [][]string{row}
}

type chunkList = []domain.Task[correction.Input, correction.Transform]

// chunksTable строит таблицу chunks одной task group.
func chunksTable(chunks chunkList) ([]string, [][]string) {
	headers := []string{"CHUNK_ID", "NAME", "DRY_RUN", "ITEMS", "COMPLETED", "CREATED"}
	rows := make([][]string, len(chunks))
	for i, c := range chunks {
		rows[i] = []string{
			c.ID,
			c.Name,
			strconv.FormatBool(c.IsDryRun),
			strconv.Itoa(len(c.Items)),
			formatTime(c.CompletedAt),
			c.CreatedAt.Format(time.RFC3339),
		}
	}
	return headers, rows
}

// itemsTable строит таблицу items группы в порядке добавления.
func itemsTable(chunks chunkList) ([]string, [][]string) {
	headers := []string{"#", "ITEM_ID", "ORDER_ID", "NEW_STATUS", "STATUS", "REMARK"}

	items := domain.MergeItems(chunks)
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			item.ID,
			item.TransformedData.OrderID,
			string(item.TransformedData.NewOrderStatus),
			item.Status.String(),
			item.Remark,
		}
	}
	return headers, rows
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.RFC3339)
}
