package demo

import (
	"fmt"
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/five82/plakview/internal/plakar"
)

// Repository is a deterministic in-memory snapshot store. The same seed
// always produces the same snapshots, trees and file contents.
type Repository struct {
	name      string
	snapshots []plakar.SnapshotSummary
	trees     map[string]*node
}

type node struct {
	name     string
	dir      bool
	mode     string
	uid, gid int
	mtime    time.Time
	mimeType string
	content  []byte
	inode    uint64
	children []*node
}

func (n *node) size() uint64 {
	if n.dir {
		return 4096
	}
	return uint64(len(n.content))
}

func (n *node) child(name string) *node {
	i := sort.Search(len(n.children), func(i int) bool { return n.children[i].name >= name })
	if i < len(n.children) && n.children[i].name == name {
		return n.children[i]
	}
	return nil
}

var (
	demoUsers = []string{"fred", "alice", "bob", "gilles", "poolp"}
	demoHosts = []string{"poolp.local", "laptop.example.org", "nas.home", "build-01.example.com"}
	demoTags  = []string{"daily", "weekly", "home", "work", "photos", "pre-upgrade", "offsite"}
	demoOS    = []string{"linux", "openbsd", "darwin", "windows"}
	baseTime  = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

	// The system MIME tables differ between hosts; demo data must not.
	mimeTypes = map[string]string{
		".txt":  "text/plain",
		".log":  "text/plain",
		".md":   "text/markdown",
		".csv":  "text/csv",
		".go":   "text/x-go",
		".json": "application/json",
		".pdf":  "application/pdf",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".mp3":  "audio/mpeg",
		".mp4":  "video/mp4",
		"":      "text/plain",
	}
)

// New builds a repository named name holding count snapshots.
func New(name string, count int, seed uint64) *Repository {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	repo := &Repository{name: name, trees: make(map[string]*node, count)}

	for i := 0; i < count; i++ {
		id, err := uuid.NewRandomFromReader(rngReader{rng})
		if err != nil {
			panic(fmt.Sprintf("demo: uuid from rng: %v", err))
		}
		user := demoUsers[rng.IntN(len(demoUsers))]
		host := demoHosts[rng.IntN(len(demoHosts))]
		created := baseTime.Add(time.Duration(i)*36*time.Hour + time.Duration(rng.IntN(3600))*time.Second)

		root := buildTree(rng, user, created)
		total := treeSize(root)

		tags := make([]string, 0, 3)
		for _, j := range rng.Perm(len(demoTags))[:1+rng.IntN(3)] {
			tags = append(tags, demoTags[j])
		}
		sort.Strings(tags)

		sum := plakar.SnapshotSummary{
			ID:        id.String(),
			ShortID:   plakar.ShortID(id.String()),
			Username:  user,
			Hostname:  host,
			Location:  user + "@" + host,
			RootPath:  "/home/" + user,
			Date:      created.Format(time.RFC3339),
			Size:      humanize.Bytes(total),
			Tags:      tags,
			OS:        demoOS[rng.IntN(len(demoOS))],
			Signature: fmt.Sprintf("%016x", rng.Uint64()),
		}
		repo.snapshots = append(repo.snapshots, sum)
		repo.trees[sum.ID] = root
	}

	// Newest first.
	sort.Slice(repo.snapshots, func(i, j int) bool {
		return repo.snapshots[i].Date > repo.snapshots[j].Date
	})
	return repo
}

// Name returns the repository name reported by /api/config.
func (r *Repository) Name() string {
	return r.name
}

// Snapshots returns every snapshot, newest first.
func (r *Repository) Snapshots() []plakar.SnapshotSummary {
	out := make([]plakar.SnapshotSummary, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

func (r *Repository) snapshot(id string) (plakar.SnapshotSummary, bool) {
	for _, s := range r.snapshots {
		if s.ID == id {
			return s, true
		}
	}
	return plakar.SnapshotSummary{}, false
}

// lookup resolves an absolute path inside a snapshot.
func (r *Repository) lookup(id, p string) (*node, bool) {
	cur, ok := r.trees[id]
	if !ok {
		return nil, false
	}
	for _, part := range strings.Split(p, "/") {
		if part == "" {
			continue
		}
		if !cur.dir {
			return nil, false
		}
		if cur = cur.child(part); cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// entry converts a node at dir/name into its wire form.
func entry(snapshotID, dir string, n *node) plakar.PathEntry {
	full := path.Join(dir, n.name)
	e := plakar.PathEntry{
		Name:             n.name,
		IsDirectory:      n.dir,
		Mode:             n.mode,
		UID:              fmt.Sprint(n.uid),
		GID:              fmt.Sprint(n.gid),
		ModificationTime: n.mtime.UTC().Format(time.RFC3339),
		Size:             humanize.Bytes(n.size()),
		DirectoryPath:    snapshotID + ":" + strings.TrimSuffix(dir, "/") + "/",
		FileDetails: plakar.FileDetails{
			Device: "64769",
			Inode:  fmt.Sprint(n.inode),
		},
	}
	if n.dir {
		e.Path = snapshotID + ":" + full + "/"
		return e
	}
	e.Path = snapshotID + ":" + full
	e.MimeType = n.mimeType
	e.ByteSize = n.size()
	sum := sha256.Sum256(n.content)
	e.Checksum = hex.EncodeToString(sum[:])
	e.RawPath = "/api/raw/" + snapshotID + ":" + full
	return e
}

type searchHit struct {
	snapshot plakar.SnapshotSummary
	path     string
	node     *node
}

// search walks every snapshot and returns entries whose path contains q,
// case-insensitively.
func (r *Repository) search(q string, limit int) []searchHit {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var hits []searchHit
	for _, snap := range r.snapshots {
		var walk func(dir string, n *node) bool
		walk = func(dir string, n *node) bool {
			for _, c := range n.children {
				full := path.Join(dir, c.name)
				if strings.Contains(strings.ToLower(full), q) {
					hits = append(hits, searchHit{snapshot: snap, path: full, node: c})
					if len(hits) >= limit {
						return false
					}
				}
				if c.dir && !walk(full, c) {
					return false
				}
			}
			return true
		}
		if !walk("/", r.trees[snap.ID]) {
			break
		}
	}
	return hits
}

func buildTree(rng *rand.Rand, user string, created time.Time) *node {
	var inode uint64 = 2
	nextInode := func() uint64 { inode++; return inode }
	stamp := func() time.Time {
		return created.Add(-time.Duration(rng.IntN(90*24)) * time.Hour)
	}
	dir := func(name string, children ...*node) *node {
		sort.Slice(children, func(i, j int) bool { return children[i].name < children[j].name })
		return &node{name: name, dir: true, mode: "drwxr-xr-x", uid: 1000, gid: 1000, mtime: stamp(), inode: nextInode(), children: children}
	}
	file := func(name string, content []byte) *node {
		mt, ok := mimeTypes[path.Ext(name)]
		if !ok {
			mt = "application/octet-stream"
		}
		return &node{name: name, mode: "-rw-r--r--", uid: 1000, gid: 1000, mtime: stamp(), mimeType: mt, content: content, inode: nextInode()}
	}

	var logs []*node
	for i := 0; i < 12+rng.IntN(20); i++ {
		day := created.AddDate(0, 0, -i).Format("2006-01-02")
		logs = append(logs, file("backup-"+day+".log", logContent(rng, day)))
	}

	home := dir(user,
		file(".profile", []byte("export EDITOR=vi\nexport PAGER=less\n")),
		dir("Documents",
			file("report.txt", reportContent(rng, user)),
			file("notes.md", []byte("# Notes\n\n- rotate backup keys\n- check offsite sync\n\n```sh\nplakar backup /home\n```\n")),
			file("budget.csv", csvContent(rng)),
			file("manual.pdf", binaryContent(rng, []byte("%PDF-1.4\n"), 3000)),
		),
		dir("Pictures",
			file("holiday.png", binaryContent(rng, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, 2048)),
			file("cat.jpg", binaryContent(rng, []byte{0xff, 0xd8, 0xff, 0xe0}, 4096)),
		),
		dir("Music", file("song.mp3", binaryContent(rng, []byte("ID3"), 8192))),
		dir("Videos", file("clip.mp4", binaryContent(rng, []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p'}, 16384))),
		dir("src",
			file("main.go", []byte("package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hello from "+user+"\")\n}\n")),
			file("config.json", []byte(`{"repository": "/var/backups/plakar", "concurrency": 4}`+"\n")),
		),
		dir("logs", logs...),
		file("archive.bin", binaryContent(rng, nil, 1024)),
	)
	// Names with URL-reserved characters. Built after the random part of the
	// tree so the generator's sequence is unchanged.
	if docs := home.child("Documents"); docs != nil {
		for _, name := range []string{"notes#1.txt", "what?.txt", "100%.txt"} {
			docs.children = append(docs.children, &node{
				name: name, mode: "-rw-r--r--", uid: 1000, gid: 1000, mtime: created,
				mimeType: "text/plain", content: []byte("contents of " + name + "\n"), inode: nextInode(),
			})
		}
		sort.Slice(docs.children, func(i, j int) bool { return docs.children[i].name < docs.children[j].name })
	}
	return dir("", dir("home", home), dir("etc", file("hosts", []byte("127.0.0.1 localhost\n::1 localhost\n"))))
}

func treeSize(n *node) uint64 {
	total := n.size()
	for _, c := range n.children {
		total += treeSize(c)
	}
	return total
}

func reportContent(rng *rand.Rand, user string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Quarterly report for %s\n\n", user)
	for q := 1; q <= 4; q++ {
		fmt.Fprintf(&b, "Q%d: %d files backed up, %s deduplicated\n", q, 1000+rng.IntN(9000), humanize.Bytes(uint64(rng.IntN(1<<30))))
	}
	return []byte(b.String())
}

func csvContent(rng *rand.Rand) []byte {
	var b strings.Builder
	b.WriteString("month,amount\n")
	for m := 1; m <= 12; m++ {
		fmt.Fprintf(&b, "%s,%d\n", time.Month(m).String()[:3], 100+rng.IntN(900))
	}
	return []byte(b.String())
}

func logContent(rng *rand.Rand, day string) []byte {
	var b strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "%sT0%d:00:00Z info backup chunk=%08x ok\n", day, i, rng.Uint32())
	}
	return []byte(b.String())
}

func binaryContent(rng *rand.Rand, magic []byte, size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(rng.UintN(256))
	}
	copy(out, magic)
	return out
}

// rngReader adapts a math/rand source for uuid generation.
type rngReader struct{ rng *rand.Rand }

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.UintN(256))
	}
	return len(p), nil
}
