package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"linktrack-platform/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestStore 为每个测试打开一个独立的内存数据库
func openTestStore(t *testing.T) *Store {
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
		&model.TrackedUser{},
		&model.TrackedGroup{},
		&model.GroupMember{},
	), "数据库迁移失败")

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return New(db)
}

func seedLink(t *testing.T, s *Store, linkID string, ownerID uint, chatID int64, handle string) *model.TrackedLink {
	t.Helper()
	link := &model.TrackedLink{
		LinkID:           linkID,
		OwnerID:          ownerID,
		TargetReference:  "news",
		Code:             "ab3",
		TargetChatID:     chatID,
		TargetChatHandle: handle,
	}
	require.NoError(t, s.UpsertLink(context.Background(), link))
	return link
}

func clicker(id int64) model.ClickEvent {
	return model.ClickEvent{
		ClickerID:    id,
		FirstName:    "Test",
		Username:     fmt.Sprintf("user%d", id),
		LanguageCode: "en",
	}
}

func TestClickCountMatchesEventRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 100, "news")

	for i := 0; i < 5; i++ {
		_, err := s.RecordClick(ctx, "news-ab3", clicker(int64(i+1)))
		require.NoError(t, err)
	}

	link, err := s.GetLink(ctx, "news-ab3")
	require.NoError(t, err)
	count, err := s.CountClicks(ctx, "news-ab3")
	require.NoError(t, err)

	assert.Equal(t, int64(5), link.ClickCount)
	assert.Equal(t, link.ClickCount, count, "计数器必须与明细行数一致")
}

func TestRecordClickKeepsSource(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 0, "")

	ev := clicker(42)
	ev.Source = "fb"
	saved, err := s.RecordClick(ctx, "news-ab3", ev)
	require.NoError(t, err)
	assert.Equal(t, "fb", saved.Source)
	assert.Equal(t, "news-ab3", saved.LinkID)
	assert.False(t, saved.Timestamp.IsZero())
}

func TestIncrementClickMissingLinkIsNoop(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.IncrementClick(context.Background(), "ghost-zzz"))
}

func TestGetLinkNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetLink(context.Background(), "missing-xyz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertOverwritesExistingRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 100, "news")

	replacement := &model.TrackedLink{
		LinkID:          "news-ab3",
		OwnerID:         1,
		TargetReference: "news",
		Code:            "ab3",
		Alias:           "替换后的别名",
	}
	require.NoError(t, s.UpsertLink(ctx, replacement))

	link, err := s.GetLink(ctx, "news-ab3")
	require.NoError(t, err)
	assert.Equal(t, "替换后的别名", link.Alias)
}

func TestDeleteLinkCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 100, "news")

	_, err := s.RecordClick(ctx, "news-ab3", clicker(7))
	require.NoError(t, err)
	require.NoError(t, s.AppendActivity(ctx, &model.ActivityRecord{
		LinkID: "news-ab3", ActorID: 7, ChatID: 100, MessageText: "hi",
	}))

	require.NoError(t, s.DeleteLinkCascade(ctx, "news-ab3"))

	_, err = s.GetLink(ctx, "news-ab3")
	assert.ErrorIs(t, err, ErrNotFound)

	clicks, err := s.CountClicks(ctx, "news-ab3")
	require.NoError(t, err)
	assert.Zero(t, clicks)

	activity, err := s.CountActivity(ctx, "news-ab3", 0)
	require.NoError(t, err)
	assert.Zero(t, activity)
}

func TestRosterDeduplicatesByClicker(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 0, "")

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	// 同一用户点击三次
	for i, ts := range []time.Time{t1, t1.Add(time.Hour), t1.Add(2 * time.Hour)} {
		ev := clicker(42)
		ev.Timestamp = ts
		ev.Source = fmt.Sprintf("s%d", i)
		_, err := s.RecordClick(ctx, "news-ab3", ev)
		require.NoError(t, err)
	}
	// 另一个用户点击一次，时间更晚
	late := clicker(43)
	late.Timestamp = t1.Add(3 * time.Hour)
	_, err := s.RecordClick(ctx, "news-ab3", late)
	require.NoError(t, err)

	rows, err := s.RosterByLink(ctx, "news-ab3")
	require.NoError(t, err)
	require.Len(t, rows, 2, "名单必须按用户去重")

	// 按首次点击倒序: 43 在前，42 取最早的 t1
	assert.Equal(t, int64(43), rows[0].ClickerID)
	assert.Equal(t, int64(42), rows[1].ClickerID)
	assert.Equal(t, t1.Unix(), rows[1].FirstClick.Unix(), "首次点击必须取最早时间")
}

func TestSourceCountsBucketsAndOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 0, "")

	sources := []string{"fb", "fb", "tw", "", "fb"}
	for i, src := range sources {
		ev := clicker(int64(i + 1))
		ev.Source = src
		_, err := s.RecordClick(ctx, "news-ab3", ev)
		require.NoError(t, err)
	}

	counts, err := s.SourceCounts(ctx, "news-ab3")
	require.NoError(t, err)
	require.Len(t, counts, 3)

	assert.Equal(t, SourceCount{Source: "fb", Count: 3}, counts[0], "来源按数量倒序")
	rest := map[string]int64{counts[1].Source: counts[1].Count, counts[2].Source: counts[2].Count}
	assert.Equal(t, int64(1), rest["tw"])
	assert.Equal(t, int64(1), rest["None"], "无标签归入 None")
}

func TestLinksClickedByUserInChat(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 100, "Foo")
	seedLink(t, s, "other-zz1", 1, 200, "bar")

	_, err := s.RecordClick(ctx, "news-ab3", clicker(42))
	require.NoError(t, err)

	// 用户名忽略大小写匹配
	links, err := s.LinksClickedByUserInChat(ctx, 42, 0, "foo")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "news-ab3", links[0].LinkID)

	// 数字 ID 精确匹配
	links, err = s.LinksClickedByUserInChat(ctx, 42, 100, "")
	require.NoError(t, err)
	assert.Len(t, links, 1)

	// 群组改名后靠数字 ID 依然命中（或匹配）
	links, err = s.LinksClickedByUserInChat(ctx, 42, 100, "renamed")
	require.NoError(t, err)
	assert.Len(t, links, 1)

	// 没点击过的用户匹配不到任何链接
	links, err = s.LinksClickedByUserInChat(ctx, 99, 100, "foo")
	require.NoError(t, err)
	assert.Empty(t, links)

	// 点击过但会话对不上
	links, err = s.LinksClickedByUserInChat(ctx, 42, 999, "nomatch")
	require.NoError(t, err)
	assert.Empty(t, links)

	// 没有任何会话标识
	links, err = s.LinksClickedByUserInChat(ctx, 42, 0, "")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTrackUserUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &model.TrackedUser{UserID: 42, Username: "first"}
	require.NoError(t, s.TrackUser(ctx, u))
	require.NoError(t, s.TrackUser(ctx, &model.TrackedUser{UserID: 42, Username: "renamed"}))

	var got model.TrackedUser
	require.NoError(t, s.db.First(&got, "user_id = ?", 42).Error)
	assert.Equal(t, "renamed", got.Username, "快照应刷新为最新用户名")
	assert.Equal(t, int64(2), got.InteractionCount)
}

func TestSaveMemberUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	m := &model.GroupMember{ChatID: 100, UserID: 42, Username: "u"}
	require.NoError(t, s.SaveMember(ctx, m))
	require.NoError(t, s.SaveMember(ctx, &model.GroupMember{ChatID: 100, UserID: 42, Username: "u"}))

	var got model.GroupMember
	require.NoError(t, s.db.First(&got, "chat_id = ? AND user_id = ?", 100, 42).Error)
	assert.Equal(t, int64(2), got.MessageCount)
}

func TestCountOwnerTotals(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedLink(t, s, "news-ab3", 1, 100, "news")
	seedLink(t, s, "other-zz1", 1, 200, "other")
	seedLink(t, s, "foreign-qq2", 2, 300, "foreign")

	_, err := s.RecordClick(ctx, "news-ab3", clicker(42))
	require.NoError(t, err)
	require.NoError(t, s.AppendActivity(ctx, &model.ActivityRecord{
		LinkID: "news-ab3", ActorID: 42, ChatID: 100, MessageText: "hi",
	}))

	totals, err := s.CountOwnerTotals(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalLinks)
	assert.Equal(t, int64(1), totals.TotalClicks)
	assert.Equal(t, int64(1), totals.TotalActivity)
}
