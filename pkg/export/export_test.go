package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkprofiler/internal/vktest"
	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/logger"
	"vkprofiler/pkg/vk"
)

func photo(urls ...string) []vk.Attachment {
	sizes := make([]vk.PhotoSize, len(urls))
	for i, u := range urls {
		sizes[i] = vk.PhotoSize{URL: u}
	}
	return []vk.Attachment{{Type: "photo", Photo: &vk.Photo{Sizes: sizes}}}
}

func TestRows(t *testing.T) {
	posts := []vk.WallPost{
		{Text: "с фото", Attachments: photo("https://s/small.jpg", "https://s/big.jpg")},
		{Text: "без вложений"},
		{Text: "ссылка", Attachments: []vk.Attachment{{Type: "link"}}},
		{Text: "пустое фото", Attachments: photo()},
		{Text: "", CopyHistory: []vk.WallPost{{Text: "репост"}}},
	}

	want := []Row{
		{Body: "с фото", URL: "https://s/big.jpg"},
		{Body: "без вложений", URL: NoPhoto},
		{Body: "ссылка", URL: NoPhoto},
		{Body: "пустое фото", URL: NoPhoto},
		{Body: "", URL: NoPhoto},
	}
	assert.Equal(t, want, Rows(posts))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Row{
		{Body: "строка, с запятой", URL: NoPhoto},
		{Body: "две\nстроки", URL: "https://s/a.jpg"},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"body", "url"},
		{"строка, с запятой", "pass"},
		{"две\nстроки", "https://s/a.jpg"},
	}, records)
}

func TestSaveCSVIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "wall.csv")

	require.NoError(t, SaveCSV(path, []Row{{Body: "a", URL: NoPhoto}}))
	require.NoError(t, SaveCSV(path, []Row{{Body: "b", URL: NoPhoto}}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "body,url\nb,pass\n", string(content))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be gone")
}

func TestExport(t *testing.T) {
	srv := vktest.NewServer()
	defer srv.Close()
	srv.AddUser(vk.User{ID: 7, ScreenName: "princess"})
	srv.SetWall(7, []vk.WallPost{
		{ID: 2, Text: "второй", Attachments: photo("https://s/2.jpg")},
		{ID: 1, Text: "первый"},
	})

	vkCfg, rlCfg := srv.Config()
	e := New(vk.NewClient(vkCfg, rlCfg, logger.NewNopLogger()), logger.NewNopLogger())

	path := filepath.Join(t.TempDir(), "wall.csv")
	n, err := e.Export(context.Background(), "princess", path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "body,url\nвторой,https://s/2.jpg\nпервый,pass\n", string(content))

	reqs := srv.Requests(vk.MethodWallGet)
	require.Len(t, reqs, 1)
	assert.Equal(t, "princess", reqs[0].Get("domain"))
	assert.Empty(t, reqs[0].Get("offset"))
}

func TestExportAPIErrorWritesNothing(t *testing.T) {
	srv := vktest.NewServer()
	defer srv.Close()
	srv.FailMethod(vk.MethodWallGet, 0, &errs.APIError{Code: errs.CodeAccessDenied, Message: "Access denied"})

	vkCfg, rlCfg := srv.Config()
	e := New(vk.NewClient(vkCfg, rlCfg, logger.NewNopLogger()), logger.NewNopLogger())

	path := filepath.Join(t.TempDir(), "wall.csv")
	_, err := e.Export(context.Background(), "closed", path)

	apiErr, ok := errs.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, errs.CodeAccessDenied, apiErr.Code)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
