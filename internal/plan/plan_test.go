package plan_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mixtape/internal/plan"
	"mixtape/internal/textutil"
)

type stubCaps struct {
	order []string
	exts  map[string][]string
}

func newStubCaps() stubCaps {
	return stubCaps{
		order: []string{"sox", "ffmpeg"},
		exts: map[string][]string{
			"sox":    {"mp3", "ogg", "flac", "wav"},
			"ffmpeg": {"mp3", "ogg", "flac", "wav", "m4a"},
		},
	}
}

func (s stubCaps) Known(ext string) bool {
	_, ok := s.Select(ext)
	return ok
}

func (s stubCaps) Select(ext string) (string, bool) {
	for _, name := range s.order {
		for _, e := range s.exts[name] {
			if e == ext {
				return name, true
			}
		}
	}
	return "", false
}

func planFor(t *testing.T, records []plan.SourceRecord, opts plan.Options) plan.Result {
	t.Helper()
	if opts.TargetRoot == "" {
		opts.TargetRoot = "target"
	}
	if opts.TargetExtension == "" {
		opts.TargetExtension = "mp3"
	}
	if opts.Capabilities == nil {
		opts.Capabilities = newStubCaps()
	}
	groups := plan.Dedup(records, opts.Layout.ScopedByPlaylist())
	result, err := plan.Plan(groups, opts)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	return result
}

func TestPlanMirrorRelativeScenario(t *testing.T) {
	records := []plan.SourceRecord{
		{Origin: "/music/A/song.flac", Playlist: "Drive"},
		{Origin: "/music/B/track.ogg", Playlist: "Drive"},
	}
	result := planFor(t, records, plan.Options{Layout: plan.LayoutMirror})

	if result.CommonPrefix != "/music" {
		t.Fatalf("unexpected common prefix: %q", result.CommonPrefix)
	}
	want := []struct {
		dest string
		ext  string
	}{
		{filepath.Join("target", "A", "song.mp3"), "flac"},
		{filepath.Join("target", "B", "track.mp3"), "ogg"},
	}
	if len(result.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(result.Items))
	}
	for i, w := range want {
		item := result.Items[i]
		if item.DestinationPath != w.dest {
			t.Fatalf("item %d: destination %q, want %q", i, item.DestinationPath, w.dest)
		}
		if item.Action != plan.ActionTranscode {
			t.Fatalf("item %d: expected transcode, got %s", i, item.Action)
		}
		if item.Extension != w.ext {
			t.Fatalf("item %d: extension %q, want %q", i, item.Extension, w.ext)
		}
		if item.EncoderHint != "sox" {
			t.Fatalf("item %d: expected sox hint, got %q", i, item.EncoderHint)
		}
		if item.DestinationDir != filepath.Dir(w.dest) {
			t.Fatalf("item %d: destination dir %q", i, item.DestinationDir)
		}
	}
}

func TestPlanNamedByPlaylistKeepsBothPlaylists(t *testing.T) {
	records := []plan.SourceRecord{
		{Origin: "/music/A/song.flac", Playlist: "Drive"},
		{Origin: "/music/A/song.flac", Playlist: "Home"},
		{Origin: "/music/A/song.flac", Playlist: "Drive"},
	}
	result := planFor(t, records, plan.Options{Layout: plan.LayoutNamed})

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	wantDests := []string{
		filepath.Join("target", "Drive", "song.mp3"),
		filepath.Join("target", "Home", "song.mp3"),
	}
	for i, item := range result.Items {
		if item.DestinationPath != wantDests[i] {
			t.Fatalf("item %d: destination %q, want %q", i, item.DestinationPath, wantDests[i])
		}
		if item.Origin != "/music/A/song.flac" {
			t.Fatalf("item %d: unexpected origin %q", i, item.Origin)
		}
		if item.Collision() {
			t.Fatalf("item %d: unexpected collision", i)
		}
	}
}

func TestPlanCopiesWhenAlreadyTargetFormat(t *testing.T) {
	result := planFor(t, []plan.SourceRecord{{Origin: "track.mp3", Playlist: "p"}}, plan.Options{})

	item := result.Items[0]
	if item.Action != plan.ActionCopy {
		t.Fatalf("expected copy, got %s", item.Action)
	}
	if item.DestinationPath != filepath.Join("target", "track.mp3") {
		t.Fatalf("unexpected destination: %q", item.DestinationPath)
	}
	if item.EncoderHint != "" {
		t.Fatalf("copy should carry no encoder hint, got %q", item.EncoderHint)
	}
	if result.Copies() != 1 {
		t.Fatalf("expected one copy, got %d", result.Copies())
	}
}

func TestPlanRecodeForcesTranscode(t *testing.T) {
	result := planFor(t, []plan.SourceRecord{{Origin: "/m/track.mp3"}}, plan.Options{Recode: true})
	if result.Items[0].Action != plan.ActionTranscode {
		t.Fatalf("expected transcode with recode, got %s", result.Items[0].Action)
	}
	if result.Items[0].EncoderHint != "sox" {
		t.Fatalf("expected sox hint, got %q", result.Items[0].EncoderHint)
	}
}

func TestPlanExtensionMatchIsCaseInsensitive(t *testing.T) {
	result := planFor(t, []plan.SourceRecord{{Origin: "/m/LOUD.MP3"}}, plan.Options{TargetExtension: "MP3"})
	item := result.Items[0]
	if item.Action != plan.ActionCopy {
		t.Fatalf("expected copy, got %s", item.Action)
	}
	if item.Extension != "mp3" {
		t.Fatalf("expected lowercased extension, got %q", item.Extension)
	}
	if filepath.Base(item.DestinationPath) != "LOUD.mp3" {
		t.Fatalf("unexpected destination: %q", item.DestinationPath)
	}
}

func TestPlanAppendsExtensionWhenUnrecognized(t *testing.T) {
	records := []plan.SourceRecord{
		{Origin: "/m/notes.txt"},
		{Origin: "/m/README"},
	}
	result := planFor(t, records, plan.Options{Layout: plan.LayoutSingle})

	want := []string{"notes.txt.mp3", "README.mp3"}
	for i, item := range result.Items {
		if filepath.Base(item.DestinationPath) != want[i] {
			t.Fatalf("item %d: destination %q, want %q", i, item.DestinationPath, want[i])
		}
		if item.Extension != "" || item.Action != plan.ActionTranscode || item.EncoderHint != "" {
			t.Fatalf("item %d: unexpected planning %+v", i, item)
		}
	}
}

func TestPlanMangleOnlyTouchesOriginPortion(t *testing.T) {
	root := "/media/My Stick (FAT)"
	records := []plan.SourceRecord{
		{Origin: "/music/Björk/Jóga (live).flac", Playlist: "Road Trip"},
		{Origin: "/music/AC-DC/T.N.T..ogg", Playlist: "Road Trip"},
	}
	for _, layout := range []plan.Layout{plan.LayoutMirror, plan.LayoutNamed, plan.LayoutSingle} {
		result := planFor(t, records, plan.Options{Layout: layout, Mangle: true, TargetRoot: root})
		for _, item := range result.Items {
			if !strings.HasPrefix(item.DestinationPath, root+"/") {
				t.Fatalf("%s: target root altered: %q", layout, item.DestinationPath)
			}
			rest := strings.TrimPrefix(item.DestinationPath, root+"/")
			if textutil.Mangle(rest) != rest {
				t.Fatalf("%s: unsafe bytes left in %q", layout, rest)
			}
		}
	}

	result := planFor(t, records[:1], plan.Options{Layout: plan.LayoutNamed, Mangle: true, TargetRoot: root})
	want := root + "/Road_Trip/J__ga__live_.mp3"
	if result.Items[0].DestinationPath != want {
		t.Fatalf("unexpected mangled destination: %q, want %q", result.Items[0].DestinationPath, want)
	}
}

func TestPlanMarksDestinationCollisions(t *testing.T) {
	records := []plan.SourceRecord{
		{Origin: "/a/x.flac"},
		{Origin: "/b/x.flac"},
		{Origin: "/c/x.mp3"},
		{Origin: "/c/y.ogg"},
	}
	result := planFor(t, records, plan.Options{Layout: plan.LayoutSingle})

	if result.Items[0].Collision() {
		t.Fatal("first claimant must not collide")
	}
	for _, i := range []int{1, 2} {
		if result.Items[i].CollidesWith != "/a/x.flac" {
			t.Fatalf("item %d: expected collision with /a/x.flac, got %q", i, result.Items[i].CollidesWith)
		}
	}
	if result.Items[3].Collision() {
		t.Fatal("unrelated item must not collide")
	}
	if result.Collisions() != 2 {
		t.Fatalf("expected 2 collisions, got %d", result.Collisions())
	}
	if result.Copies() != 0 {
		t.Fatalf("colliding copy must not be counted, got %d", result.Copies())
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	records := []plan.SourceRecord{
		{Origin: "/music/z/last.flac", Playlist: "B"},
		{Origin: "/music/a/first.ogg", Playlist: "A"},
		{Origin: "/music/m/mid.mp3", Playlist: "A"},
		{Origin: "/music/a/first.ogg", Playlist: "B"},
	}
	for _, layout := range []plan.Layout{plan.LayoutMirror, plan.LayoutNamed, plan.LayoutSingle} {
		first := planFor(t, records, plan.Options{Layout: layout, Mangle: true})
		for i := 0; i < 5; i++ {
			again := planFor(t, records, plan.Options{Layout: layout, Mangle: true})
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("%s: plan differs between runs:\n%+v\n%+v", layout, first, again)
			}
		}
	}
}

func TestPlanRejectsMixedAbsoluteAndRelativeOrigins(t *testing.T) {
	groups := plan.Dedup([]plan.SourceRecord{{Origin: "/abs/a.flac"}, {Origin: "rel/b.flac"}}, false)
	_, err := plan.Plan(groups, plan.Options{TargetRoot: "t", TargetExtension: "mp3", Capabilities: newStubCaps()})
	if !errors.Is(err, plan.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestPlanRejectsOriginsAboveTarget(t *testing.T) {
	records := []plan.SourceRecord{
		{Origin: "../outside/a.flac", Playlist: "p"},
		{Origin: "b.flac", Playlist: "p"},
	}
	groups := plan.Dedup(records, false)
	_, err := plan.Plan(groups, plan.Options{TargetRoot: "/target", TargetExtension: "mp3", Capabilities: newStubCaps()})
	if !errors.Is(err, plan.ErrConfig) {
		t.Fatalf("expected ErrConfig for origin climbing out of the target, got %v", err)
	}

	// The same records are fine when every file lands directly in the target.
	result := planFor(t, records, plan.Options{TargetRoot: "/target", Layout: plan.LayoutSingle})
	if got := result.Items[0].DestinationPath; got != filepath.Join("/target", "a.mp3") {
		t.Fatalf("unexpected single-layout destination %q", got)
	}
}

func TestPlanNamedLayoutKeepsPlaylistNamesInsideTarget(t *testing.T) {
	cases := []struct {
		playlist string
		wantDir  string
	}{
		{"..", "_.."},
		{".", "_."},
		{"", "_"},
		{"../../etc", ".._.._etc"},
		{"Rock/Pop", "Rock_Pop"},
		{"Road Trip", "Road Trip"},
	}
	for _, tc := range cases {
		result := planFor(t, []plan.SourceRecord{{Origin: "/music/a.flac", Playlist: tc.playlist}},
			plan.Options{TargetRoot: "/target", Layout: plan.LayoutNamed})
		item := result.Items[0]
		want := filepath.Join("/target", tc.wantDir, "a.mp3")
		if item.DestinationPath != want {
			t.Fatalf("playlist %q: destination %q, want %q", tc.playlist, item.DestinationPath, want)
		}
		if !strings.HasPrefix(item.DestinationDir, "/target/") {
			t.Fatalf("playlist %q: destination dir %q escapes the target", tc.playlist, item.DestinationDir)
		}
		if item.Playlist != tc.playlist {
			t.Fatalf("playlist %q: record playlist rewritten to %q", tc.playlist, item.Playlist)
		}
	}
}

func TestPlanValidatesOptions(t *testing.T) {
	groups := plan.Dedup([]plan.SourceRecord{{Origin: "/a.flac"}}, false)
	cases := []plan.Options{
		{TargetExtension: "mp3", Capabilities: newStubCaps()},
		{TargetRoot: "t", Capabilities: newStubCaps()},
		{TargetRoot: "t", TargetExtension: "mp3"},
	}
	for i, opts := range cases {
		if _, err := plan.Plan(groups, opts); !errors.Is(err, plan.ErrConfig) {
			t.Fatalf("case %d: expected ErrConfig, got %v", i, err)
		}
	}
}

func TestCommonPrefix(t *testing.T) {
	cases := []struct {
		origins []string
		want    string
	}{
		{nil, ""},
		{[]string{"/music/A/song.flac"}, "/music/A"},
		{[]string{"/music/A/song.flac", "/music/B/track.ogg"}, "/music"},
		{[]string{"/music/Abba/x.mp3", "/music/Alan/y.mp3"}, "/music"},
		{[]string{"/a/x.mp3", "/b/y.mp3"}, "/"},
		{[]string{"track.mp3"}, ""},
		{[]string{"rel/a.mp3", "rel/b.mp3"}, "rel"},
		{[]string{"/x.mp3", "rel/b.mp3"}, ""},
	}
	for _, tc := range cases {
		if got := plan.CommonPrefix(tc.origins); got != tc.want {
			t.Fatalf("CommonPrefix(%q) = %q, want %q", tc.origins, got, tc.want)
		}
	}
}

func TestSelectLayoutPrecedence(t *testing.T) {
	if plan.SelectLayout(true, true) != plan.LayoutSingle {
		t.Fatal("single must take precedence over named")
	}
	if plan.SelectLayout(false, true) != plan.LayoutNamed {
		t.Fatal("expected named layout")
	}
	if plan.SelectLayout(false, false) != plan.LayoutMirror {
		t.Fatal("expected mirror layout by default")
	}
}
