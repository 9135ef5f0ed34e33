package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"linktrack-platform/internal/model"
	"linktrack-platform/internal/platform"
	"linktrack-platform/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeMembership 按用户 ID 返回预设状态的成员检查器
type fakeMembership struct {
	statuses map[int64]string
	err      error
}

func (f *fakeMembership) MemberStatus(ctx context.Context, chatRef string, userID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.statuses[userID], nil
}

func newTestAggregator(t *testing.T, membership platform.MembershipChecker) (*Aggregator, *store.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "无法连接到内存数据库")
	require.NoError(t, db.AutoMigrate(
		&model.TrackedLink{},
		&model.ClickEvent{},
		&model.ActivityRecord{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	st := store.New(db)
	return New(st, membership, 4, zap.NewNop().Sugar()), st
}

func seedExportLink(t *testing.T, st *store.Store) *model.TrackedLink {
	t.Helper()
	link := &model.TrackedLink{
		LinkID:          "news-ab3",
		OwnerID:         1,
		TargetReference: "news",
		Code:            "ab3",
		TargetChatID:    100,
	}
	require.NoError(t, st.UpsertLink(context.Background(), link))
	return link
}

func TestRosterEnrichment(t *testing.T) {
	membership := &fakeMembership{statuses: map[int64]string{42: "member", 43: "left"}}
	agg, st := newTestAggregator(t, membership)
	ctx := context.Background()
	link := seedExportLink(t, st)

	for _, id := range []int64{42, 43} {
		_, err := st.RecordClick(ctx, link.LinkID, model.ClickEvent{
			ClickerID: id, FirstName: "Ann", Username: fmt.Sprintf("u%d", id), LanguageCode: "en",
		})
		require.NoError(t, err)
	}
	require.NoError(t, st.AppendActivity(ctx, &model.ActivityRecord{
		LinkID: link.LinkID, ActorID: 42, ChatID: 100, MessageText: "hi",
	}))

	rows, err := agg.Roster(ctx, link)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[int64]RosterRow{rows[0].UserID: rows[0], rows[1].UserID: rows[1]}
	assert.Equal(t, "member", byID[42].JoinStatus)
	assert.Equal(t, int64(1), byID[42].ActivityCount)
	assert.Equal(t, "left", byID[43].JoinStatus)
	assert.Zero(t, byID[43].ActivityCount)
}

func TestRosterMembershipFailureFallsBack(t *testing.T) {
	membership := &fakeMembership{err: errors.New("gateway unreachable")}
	agg, st := newTestAggregator(t, membership)
	ctx := context.Background()
	link := seedExportLink(t, st)

	_, err := st.RecordClick(ctx, link.LinkID, model.ClickEvent{ClickerID: 42})
	require.NoError(t, err)

	rows, err := agg.Roster(ctx, link)
	require.NoError(t, err, "单个状态查询失败不应拖垮报表")
	require.Len(t, rows, 1)
	assert.Equal(t, "Not Joined", rows[0].JoinStatus)
}

func TestRosterWithoutMembershipChecker(t *testing.T) {
	agg, st := newTestAggregator(t, nil)
	ctx := context.Background()
	link := seedExportLink(t, st)

	_, err := st.RecordClick(ctx, link.LinkID, model.ClickEvent{ClickerID: 42})
	require.NoError(t, err)

	rows, err := agg.Roster(ctx, link)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Unknown", rows[0].JoinStatus)
}

func TestBuildSummary(t *testing.T) {
	agg, st := newTestAggregator(t, &fakeMembership{})
	ctx := context.Background()
	link := seedExportLink(t, st)

	// 42 点击两次（fb 与无标签），43 点击一次
	for _, ev := range []model.ClickEvent{
		{ClickerID: 42, Source: "fb"},
		{ClickerID: 42, Source: ""},
		{ClickerID: 43, Source: "fb"},
	} {
		_, err := st.RecordClick(ctx, link.LinkID, ev)
		require.NoError(t, err)
	}

	summary, err := agg.BuildSummary(ctx, link)
	require.NoError(t, err)

	assert.Equal(t, "news", summary.Target)
	assert.Equal(t, int64(3), summary.TotalClicks, "总点击不去重")
	assert.Equal(t, int64(2), summary.UniqueUsers)
	require.Len(t, summary.Sources, 2)
	assert.Equal(t, store.SourceCount{Source: "fb", Count: 2}, summary.Sources[0])
	assert.Equal(t, store.SourceCount{Source: "None", Count: 1}, summary.Sources[1])
}

func TestRosterCSVLayout(t *testing.T) {
	rows := []RosterRow{{
		UserID:        42,
		FirstName:     "Ann",
		Username:      "ann",
		Language:      "en",
		FirstClick:    time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		JoinStatus:    "member",
		ActivityCount: 3,
	}}

	out, err := RosterCSV(rows)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "User ID,First Name,Username,Language,First Click,Join Status,Activity Count", lines[0])
	assert.Equal(t, "42,Ann,ann,en,2025-01-02 15:04:05,member,3", lines[1])
}

func TestActivityCSVLayout(t *testing.T) {
	records := []model.ActivityRecord{{
		LinkID:      "news-ab3",
		ActorID:     42,
		Username:    "ann",
		ChatID:      100,
		ChatTitle:   "News Group",
		ChatHandle:  "news",
		OwnerCode:   "ab3",
		MessageText: strings.Repeat("x", 150),
		MessageRef:  555,
		Timestamp:   time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
	}}

	out, err := ActivityCSV(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "User ID,Chat ID,Message ID,Owner Code,Timestamp,Username,Chat Username,Chat Title,Message Preview", lines[0])

	fields := strings.Split(lines[1], ",")
	require.Len(t, fields, 9)
	assert.Equal(t, "42", fields[0])
	assert.Equal(t, "100", fields[1])
	assert.Equal(t, "555", fields[2])
	assert.Equal(t, "ab3", fields[3])
	assert.Len(t, fields[8], 100, "预览截取前 100 个字符")
}
