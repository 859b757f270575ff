package npcconf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const conf = "// Prontera scripts\n" +
	"npc: npc/cities/prontera.txt\n" +
	"npc: npc/cities/geffen.txt // city of magic\n" +
	"//npc: npc/cities/payon.txt\n" +
	"NPC: \"guides.txt\"\r\n" +
	"npc: npc/cities/alberta.zh-cn.txt\n" +
	"# npc: npc/old.txt\n" +
	"npc: npc/cities/morocc.txt"

func setup(t *testing.T) (root, confPath string) {
	t.Helper()
	root = t.TempDir()
	confPath = filepath.Join(root, "npc", "scripts_custom.conf")
	writeFile(t, confPath, conf)
	writeFile(t, filepath.Join(root, "npc", "cities", "prontera.zh-cn.txt"), "")
	writeFile(t, filepath.Join(root, "npc", "guides.zh-cn.txt"), "")
	return root, confPath
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		line string
		ref  string
		ok   bool
	}{
		{"npc: npc/a.txt\n", "npc/a.txt", true},
		{"\tnpc:npc/a.txt ; legacy\n", "npc/a.txt", true},
		{"npc: 'quoted.txt'", "quoted.txt", true},
		{"npc: \"b.txt\" # note", "b.txt", true},
		{"  // npc: npc/a.txt", "", false},
		{"; npc: npc/a.txt", "", false},
		{"import: conf/other.conf", "", false},
	}
	for _, tt := range tests {
		ref, start, end, ok := parseRef(tt.line)
		if ok != tt.ok || ref != tt.ref {
			t.Errorf("parseRef(%q) = %q,%v want %q,%v", tt.line, ref, ok, tt.ref, tt.ok)
			continue
		}
		if ok && tt.line[start:end] != ref {
			t.Errorf("parseRef(%q) span %q does not match ref", tt.line, tt.line[start:end])
		}
	}
}

func TestScan(t *testing.T) {
	root, confPath := setup(t)
	r, err := Scan(confPath, root, "zh-cn")
	if err != nil {
		t.Fatal(err)
	}
	if r.Total != 5 || r.Converted != 1 || len(r.Entries) != 4 {
		t.Fatalf("unexpected report %+v", r)
	}
	var missing []string
	for _, e := range r.Missing() {
		missing = append(missing, e.Ref)
	}
	if strings.Join(missing, ",") != "npc/cities/geffen.txt,npc/cities/morocc.txt" {
		t.Errorf("missing = %v", missing)
	}
	if got := r.Summary(); got != "All 5, Checked 2 files, missing: 2, converted: 1" {
		t.Errorf("summary = %q", got)
	}
	if r.Missing()[0].Line != 3 {
		t.Errorf("unexpected line number %d", r.Missing()[0].Line)
	}
}

func TestRewrite(t *testing.T) {
	root, confPath := setup(t)
	r, err := Scan(confPath, root, "zh-cn")
	if err != nil {
		t.Fatal(err)
	}
	n, backup, err := Rewrite(r, "zh-cn")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 rewrites, got %d", n)
	}

	data, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.NewReplacer(
		"npc: npc/cities/prontera.txt", "npc: npc/cities/prontera.zh-cn.txt",
		"NPC: \"guides.txt\"", "NPC: \"guides.zh-cn.txt\"",
	).Replace(conf)
	if string(data) != want {
		t.Errorf("rewritten conf:\n%q\nwant:\n%q", data, want)
	}

	orig, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if string(orig) != conf {
		t.Errorf("backup does not hold the original")
	}

	again, err := Scan(confPath, root, "zh-cn")
	if err != nil {
		t.Fatal(err)
	}
	if again.Converted != 3 {
		t.Errorf("expected 3 converted after rewrite, got %d", again.Converted)
	}
	if n, _, err := Rewrite(again, "zh-cn"); err != nil || n != 0 {
		t.Errorf("second rewrite = %d, %v", n, err)
	}
}
