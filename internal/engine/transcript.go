package engine

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Transcript collaborator: caption tracks are discovered by scraping the
// watch page ytInitialPlayerResponse, then the selected track's timedtext XML
// is fetched and serialized as SRT. Results are memoized per (video, lang).

const playerResponseMarker = "ytInitialPlayerResponse = "

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated
}

type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Lines   []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",chardata"`
}

// ErrNoCaptions marks a video without any public caption track.
var ErrNoCaptions = errors.New("no public captions for video")

// preferredLangs expands a preference like "ko-KR" into the fallback order
// tried against the available tracks.
func preferredLangs(pref string) []string {
	var langs []string
	add := func(l string) {
		for _, have := range langs {
			if have == l {
				return
			}
		}
		langs = append(langs, l)
	}
	if pref != "" {
		add(pref)
		if base, _, ok := strings.Cut(pref, "-"); ok {
			add(base)
		}
	}
	add("en")
	add("ko")
	return langs
}

// pickTrack selects the best caption track: manual track in a preferred
// language, then auto-generated in a preferred language, then any English,
// then the first available.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return tracks[0], true
}

// fetchCaptionTracks scrapes the watch page and extracts the caption track list.
func fetchCaptionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	watchURL := cfg.WatchPageBase + "/watch?v=" + videoID

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil {
		return nil, ErrNoCaptions
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// FetchSRT returns the SRT transcript for a video, honoring the language
// preference chain. Returns ErrNoCaptions when the video has no public track.
func FetchSRT(ctx context.Context, videoID, langPref string) (string, error) {
	metrics.TranscriptRequests.Add(1)

	key := CacheKey("srt", videoID, langPref)
	if cached, ok := CacheGet(ctx, key); ok {
		return cached, nil
	}

	tracks, err := fetchCaptionTracks(ctx, videoID)
	if err != nil {
		if errors.Is(err, ErrNoCaptions) {
			metrics.TranscriptMisses.Add(1)
		}
		return "", err
	}
	track, ok := pickTrack(tracks, preferredLangs(langPref))
	if !ok {
		metrics.TranscriptMisses.Add(1)
		return "", ErrNoCaptions
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	srt := formatSRT(tt.Lines)
	if srt == "" {
		metrics.TranscriptMisses.Add(1)
		return "", ErrNoCaptions
	}
	CacheSet(ctx, key, srt)
	return srt, nil
}

// formatSRT serializes timedtext cues as SubRip.
func formatSRT(cues []timedTextCue) string {
	var sb strings.Builder
	n := 0
	for _, cue := range cues {
		text := CleanHTML(html.UnescapeString(cue.Text))
		text = strings.ReplaceAll(text, "\n", " ")
		if strings.TrimSpace(text) == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", n,
			formatSRTTime(cue.Start), formatSRTTime(cue.Start+cue.Dur), text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatSRTTime renders seconds as the SubRip "HH:MM:SS,mmm" timestamp.
func formatSRTTime(seconds float64) string {
	total := int(seconds)
	ms := int((seconds-float64(total))*1000 + 0.5)
	if ms >= 1000 {
		ms -= 1000
		total++
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ZipItem names one video for batch transcript packaging.
type ZipItem struct {
	VideoID string `json:"vid"`
	Label   string `json:"label"`
}

// BuildTranscriptZip packages one .srt per item into a ZIP archive. Items
// without captions are listed in a README.txt manifest instead of failing
// the batch.
func BuildTranscriptZip(ctx context.Context, items []ZipItem, langPref string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	var missing []string
	for _, item := range items {
		label := item.Label
		if label == "" {
			label = item.VideoID
		}
		srt, err := FetchSRT(ctx, item.VideoID, langPref)
		if err != nil {
			if !errors.Is(err, ErrNoCaptions) {
				slog.Warn("transcript fetch failed", slog.String("vid", item.VideoID), slog.Any("error", err))
			}
			missing = append(missing, label)
			continue
		}
		name := SafeFilename(label) + ".srt"
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", name, err)
		}
		if _, err := w.Write([]byte(srt)); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}
	if len(missing) > 0 {
		w, err := zw.Create("README.txt")
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		sb.WriteString("No transcript for:\n\n")
		for _, m := range missing {
			sb.WriteString("- " + m + "\n")
		}
		if _, err := w.Write([]byte(sb.String())); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth outside string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
