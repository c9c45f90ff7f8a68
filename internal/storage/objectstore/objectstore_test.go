package objectstore

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
)

func TestDestinationKey(t *testing.T) {
	tests := []struct {
		folder, user, key, want string
	}{
		{"meetings/client", "alice@example.com", "inbox/alice@example.com/acme.txt", "meetings/client/alice@example.com/acme.txt"},
		{"/meetings/other/", "bob@example.com", "inbox/bob@example.com/standup.txt", "meetings/other/bob@example.com/standup.txt"},
	}
	for _, tt := range tests {
		if got := destinationKey(tt.folder, tt.user, tt.key); got != tt.want {
			t.Errorf("destinationKey(%q, %q, %q) = %q, want %q", tt.folder, tt.user, tt.key, got, tt.want)
		}
	}
}

func TestIsProcessed(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]string
		want bool
	}{
		{"canonical header key", map[string]string{"Meeting_processed": "true"}, true},
		{"lower case", map[string]string{"meeting_processed": "TRUE"}, true},
		{"false value", map[string]string{"Meeting_processed": "false"}, false},
		{"absent", map[string]string{"Owner": "alice"}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isProcessed(tt.meta); got != tt.want {
				t.Errorf("isProcessed(%v) = %v, want %v", tt.meta, got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	notFound := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	if err := wrap(notFound, "get k", meeting.ErrAccess); !errors.Is(err, meeting.ErrNotFound) {
		t.Errorf("wrap(NoSuchKey) = %v, want ErrNotFound", err)
	}

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	if err := wrap(denied, "copy k", meeting.ErrMove); !errors.Is(err, meeting.ErrMove) {
		t.Errorf("wrap(AccessDenied) = %v, want ErrMove", err)
	}

	if err := wrap(fmt.Errorf("dial tcp: refused"), "flag k", meeting.ErrFlag); !errors.Is(err, meeting.ErrFlag) {
		t.Errorf("wrap(network) = %v, want ErrFlag", err)
	}
}

func TestNewStoreDefaults(t *testing.T) {
	s := newStore(nil, Options{Bucket: "transcripts", InboxPrefix: "/uploads/"}, logger.Nop())
	if s.inbox != "uploads" {
		t.Errorf("inbox = %q, want uploads", s.inbox)
	}
	if got := s.userPrefix("alice@example.com"); got != "uploads/alice@example.com/" {
		t.Errorf("userPrefix() = %q", got)
	}

	s = newStore(nil, Options{Bucket: "transcripts"}, logger.Nop())
	if s.inbox != "inbox" {
		t.Errorf("default inbox = %q, want inbox", s.inbox)
	}
}

const testBucket = "transcripts"

type fakeObject struct {
	body        string
	contentType string
	meta        map[string]string
	modified    time.Time
}

// fakeS3 serves the subset of the S3 API the store uses, path-style.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string]*fakeObject
	fail     map[string]int
	requests []string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]*fakeObject{}, fail: map[string]int{}}
}

func (f *fakeS3) put(key, body, contentType string, meta map[string]string, modified time.Time) {
	f.objects[key] = &fakeObject{body: body, contentType: contentType, meta: meta, modified: modified}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/"+testBucket), "/")
	f.requests = append(f.requests, r.Method+" "+key)
	if status := f.fail[r.Method+" "+key]; status != 0 {
		writeS3Error(w, r, status)
		return
	}

	switch {
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodGet:
		f.list(w, r.URL.Query().Get("prefix"))
	case r.Method == http.MethodHead || r.Method == http.MethodGet:
		obj, ok := f.objects[key]
		if !ok {
			writeS3Error(w, r, http.StatusNotFound)
			return
		}
		writeObjectHeaders(w, obj)
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, obj.body)
		}
	case r.Method == http.MethodPut && r.Header.Get("x-amz-copy-source") != "":
		f.copy(w, r, key)
	case r.Method == http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeS3Error(w, r, http.StatusNotImplemented)
	}
}

func (f *fakeS3) list(w http.ResponseWriter, prefix string) {
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<ListBucketResult><Name>` + testBucket + `</Name><IsTruncated>false</IsTruncated>`)
	for _, k := range keys {
		obj := f.objects[k]
		fmt.Fprintf(&b, `<Contents><Key>%s</Key><LastModified>%s</LastModified><ETag>"etag"</ETag><Size>%d</Size></Contents>`,
			xmlEscape(k), obj.modified.UTC().Format(time.RFC3339), len(obj.body))
	}
	b.WriteString(`</ListBucketResult>`)

	w.Header().Set("Content-Type", "application/xml")
	_, _ = io.WriteString(w, b.String())
}

func (f *fakeS3) copy(w http.ResponseWriter, r *http.Request, key string) {
	src, _ := url.PathUnescape(r.Header.Get("x-amz-copy-source"))
	src = strings.TrimPrefix(strings.TrimPrefix(src, "/"), testBucket+"/")
	from, ok := f.objects[src]
	if !ok {
		writeS3Error(w, r, http.StatusNotFound)
		return
	}

	to := &fakeObject{body: from.body, contentType: from.contentType, meta: from.meta, modified: time.Now()}
	if r.Header.Get("x-amz-metadata-directive") == "REPLACE" {
		to.contentType = r.Header.Get("Content-Type")
		to.meta = map[string]string{}
		for k, v := range r.Header {
			if name, ok := strings.CutPrefix(k, "X-Amz-Meta-"); ok {
				to.meta[name] = v[0]
			}
		}
	}
	f.objects[key] = to

	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprintf(w, `<CopyObjectResult><LastModified>%s</LastModified><ETag>"etag"</ETag></CopyObjectResult>`,
		to.modified.UTC().Format(time.RFC3339))
}

func writeObjectHeaders(w http.ResponseWriter, obj *fakeObject) {
	h := w.Header()
	h.Set("Last-Modified", obj.modified.UTC().Format(http.TimeFormat))
	h.Set("ETag", `"etag"`)
	h.Set("Content-Length", strconv.Itoa(len(obj.body)))
	if obj.contentType != "" {
		h.Set("Content-Type", obj.contentType)
	}
	for k, v := range obj.meta {
		h.Set("X-Amz-Meta-"+k, v)
	}
}

func writeS3Error(w http.ResponseWriter, r *http.Request, status int) {
	code := map[int]string{
		http.StatusForbidden:      "AccessDenied",
		http.StatusNotFound:       "NoSuchKey",
		http.StatusNotImplemented: "NotImplemented",
	}[status]
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		fmt.Fprintf(w, `<Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
	}
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func newTestStore(t *testing.T, fake *fakeS3) *implStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := New(context.Background(), Options{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    testBucket,
		Region:    "us-east-1",
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store.(*implStore)
}

func TestListRecentUnprocessed(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	fake := newFakeS3()
	fake.put("inbox/alice@example.com/standup.txt", "yesterday I shipped", "text/plain", nil, now.Add(-30*time.Minute))
	fake.put("inbox/alice@example.com/acme.txt", "renewal terms", "text/plain", nil, now.Add(-time.Hour))
	fake.put("inbox/alice@example.com/done.txt", "old", "text/plain", map[string]string{"Meeting_processed": "true"}, now.Add(-10*time.Minute))
	fake.put("inbox/alice@example.com/stale.txt", "older", "text/plain", nil, now.Add(-5*time.Hour))
	fake.put("inbox/bob@example.com/other.txt", "not alice", "text/plain", nil, now.Add(-time.Minute))
	store := newTestStore(t, fake)

	files, err := store.ListRecentUnprocessed(context.Background(), "alice@example.com", 2*time.Hour)
	if err != nil {
		t.Fatalf("ListRecentUnprocessed() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2 (processed, stale and other users filtered): %+v", len(files), files)
	}
	if files[0].ID != "inbox/alice@example.com/acme.txt" || files[1].ID != "inbox/alice@example.com/standup.txt" {
		t.Errorf("order = [%s %s], want oldest first", files[0].ID, files[1].ID)
	}
	if files[0].Name != "acme.txt" || files[0].Owner != "alice@example.com" || !files[0].InFolder("inbox") {
		t.Errorf("file = %+v", files[0])
	}
}

func TestListAccessError(t *testing.T) {
	fake := newFakeS3()
	fake.put("inbox/alice@example.com/acme.txt", "renewal terms", "text/plain", nil, time.Now())
	fake.fail["HEAD inbox/alice@example.com/acme.txt"] = http.StatusForbidden
	store := newTestStore(t, fake)

	_, err := store.ListRecentUnprocessed(context.Background(), "alice@example.com", time.Hour)
	if !errors.Is(err, meeting.ErrAccess) {
		t.Fatalf("error = %v, want ErrAccess", err)
	}
}

func TestReadContent(t *testing.T) {
	fake := newFakeS3()
	fake.put("inbox/alice@example.com/acme.txt", "Agenda: renewal terms with Acme", "text/plain", nil, time.Now())
	store := newTestStore(t, fake)

	text, err := store.ReadContent(context.Background(), meeting.TranscriptFile{ID: "inbox/alice@example.com/acme.txt"})
	if err != nil {
		t.Fatalf("ReadContent() error = %v", err)
	}
	if text != "Agenda: renewal terms with Acme" {
		t.Errorf("ReadContent() = %q", text)
	}

	_, err = store.ReadContent(context.Background(), meeting.TranscriptFile{ID: "inbox/alice@example.com/gone.txt"})
	if !errors.Is(err, meeting.ErrNotFound) {
		t.Errorf("vanished object error = %v, want ErrNotFound", err)
	}
}

func TestMarkProcessed(t *testing.T) {
	fake := newFakeS3()
	fake.put("client/alice@example.com/acme.txt", "renewal terms", "text/plain; charset=utf-8",
		map[string]string{"Source": "meet", "Meeting_processed": "false"}, time.Now())
	store := newTestStore(t, fake)

	if err := store.MarkProcessed(context.Background(), meeting.TranscriptFile{ID: "client/alice@example.com/acme.txt"}); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}

	obj := fake.objects["client/alice@example.com/acme.txt"]
	if !isProcessed(obj.meta) {
		t.Errorf("meta = %v, want processed flag", obj.meta)
	}
	if obj.meta["Source"] != "meet" {
		t.Errorf("meta = %v, existing metadata should be kept", obj.meta)
	}
	if len(obj.meta) != 2 {
		t.Errorf("meta = %v, want a single processed key", obj.meta)
	}
	if obj.contentType != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q, want it carried over", obj.contentType)
	}

	err := store.MarkProcessed(context.Background(), meeting.TranscriptFile{ID: "client/alice@example.com/gone.txt"})
	if !errors.Is(err, meeting.ErrNotFound) {
		t.Errorf("vanished flag error = %v, want ErrNotFound", err)
	}
}

func TestMoveToFolder(t *testing.T) {
	fake := newFakeS3()
	fake.put("inbox/alice@example.com/acme.txt", "renewal terms", "text/plain", nil, time.Now())
	store := newTestStore(t, fake)

	file := meeting.TranscriptFile{ID: "inbox/alice@example.com/acme.txt", Owner: "alice@example.com", Name: "acme.txt", Parents: []string{"inbox"}}
	moved, err := store.MoveToFolder(context.Background(), file, "client")
	if err != nil {
		t.Fatalf("MoveToFolder() error = %v", err)
	}
	if moved.ID != "client/alice@example.com/acme.txt" || !moved.InFolder("client") {
		t.Errorf("moved = %+v", moved)
	}
	if _, ok := fake.objects["inbox/alice@example.com/acme.txt"]; ok {
		t.Error("source should be removed")
	}
	if obj, ok := fake.objects[moved.ID]; !ok || obj.body != "renewal terms" {
		t.Errorf("destination = %+v", obj)
	}
}

func TestMoveToFolderRemoveFailure(t *testing.T) {
	fake := newFakeS3()
	fake.put("inbox/alice@example.com/acme.txt", "renewal terms", "text/plain", nil, time.Now())
	fake.fail["DELETE inbox/alice@example.com/acme.txt"] = http.StatusForbidden
	store := newTestStore(t, fake)

	file := meeting.TranscriptFile{ID: "inbox/alice@example.com/acme.txt", Owner: "alice@example.com", Name: "acme.txt", Parents: []string{"inbox"}}
	got, err := store.MoveToFolder(context.Background(), file, "client")
	if !errors.Is(err, meeting.ErrMove) {
		t.Fatalf("error = %v, want ErrMove", err)
	}
	if got.ID != file.ID {
		t.Errorf("returned file = %s, want the source %s", got.ID, file.ID)
	}
	if _, ok := fake.objects["inbox/alice@example.com/acme.txt"]; !ok {
		t.Error("source should still exist")
	}
	if _, ok := fake.objects["client/alice@example.com/acme.txt"]; ok {
		t.Error("copy should be rolled back")
	}
}

func TestMoveToFolderCopyFailure(t *testing.T) {
	fake := newFakeS3()
	fake.put("inbox/alice@example.com/acme.txt", "renewal terms", "text/plain", nil, time.Now())
	fake.fail["PUT client/alice@example.com/acme.txt"] = http.StatusForbidden
	store := newTestStore(t, fake)

	file := meeting.TranscriptFile{ID: "inbox/alice@example.com/acme.txt", Owner: "alice@example.com"}
	_, err := store.MoveToFolder(context.Background(), file, "client")
	if !errors.Is(err, meeting.ErrMove) {
		t.Fatalf("error = %v, want ErrMove", err)
	}
	for _, req := range fake.requests {
		if strings.HasPrefix(req, "DELETE") {
			t.Errorf("unexpected %s after failed copy", req)
		}
	}
}

func TestMarkTitleProcessed(t *testing.T) {
	now := time.Now()
	fake := newFakeS3()
	fake.put("inbox/alice@example.com/standup.txt", "a", "text/plain", nil, now)
	fake.put("inbox/bob@example.com/standup.txt", "b", "text/plain", nil, now)
	fake.put("inbox/carol@example.com/standup.txt", "c", "text/plain", map[string]string{"Meeting_processed": "true"}, now)
	fake.put("inbox/bob@example.com/retro.txt", "d", "text/plain", nil, now)
	store := newTestStore(t, fake)

	n, err := store.MarkTitleProcessed(context.Background(), meeting.TranscriptFile{ID: "inbox/alice@example.com/standup.txt", Name: "standup.txt"})
	if err != nil {
		t.Fatalf("MarkTitleProcessed() error = %v", err)
	}
	if n != 1 {
		t.Errorf("flagged = %d, want 1", n)
	}
	if !isProcessed(fake.objects["inbox/bob@example.com/standup.txt"].meta) {
		t.Error("bob's copy should be flagged")
	}
	if isProcessed(fake.objects["inbox/alice@example.com/standup.txt"].meta) || isProcessed(fake.objects["inbox/bob@example.com/retro.txt"].meta) {
		t.Error("only other copies with the same title should be flagged")
	}
}
