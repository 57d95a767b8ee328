package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Keyword translation collaborator.
// Two free backends are tried in order; any failure falls through, and the
// final fallback is always the input text. Results are memoized by
// (text, source, target).

// Translate returns text translated from srcLang to dstLang.
// Empty input or identical languages return the input unchanged.
func Translate(ctx context.Context, text, srcLang, dstLang string) string {
	s := strings.TrimSpace(text)
	if s == "" || srcLang == dstLang {
		return s
	}
	metrics.TranslateRequests.Add(1)

	key := CacheKey("translate", s, srcLang, dstLang)
	if cached, ok := CacheGet(ctx, key); ok {
		return cached
	}

	out, err := translateGTX(ctx, s, srcLang, dstLang)
	if err != nil {
		slog.Debug("gtx translate failed, trying mymemory", slog.Any("error", err))
		out, err = translateMyMemory(ctx, s, srcLang, dstLang)
	}
	if err != nil || strings.TrimSpace(out) == "" {
		metrics.TranslateFallbacks.Add(1)
		slog.Warn("translation failed, using original text", slog.String("text", Truncate(s, 80)), slog.Any("error", err))
		return s
	}

	out = strings.TrimSpace(out)
	CacheSet(ctx, key, out)
	return out
}

// TranslateKeywords translates each keyword, dropping blanks and
// case-insensitive duplicates while preserving order.
func TranslateKeywords(ctx context.Context, keywords []string, srcLang, dstLang string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		v := strings.TrimSpace(Translate(ctx, kw, srcLang, dstLang))
		if v == "" {
			continue
		}
		lower := strings.ToLower(v)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, v)
	}
	return out
}

// translateGTX calls the unauthenticated Google translate gtx endpoint.
// The response is a nested array; segment texts sit at [0][i][0].
func translateGTX(ctx context.Context, text, srcLang, dstLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", srcLang)
	params.Set("tl", dstLang)
	params.Set("dt", "t")
	params.Set("q", text)

	body, err := translateFetch(ctx, cfg.TranslateGTXBase+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("decode gtx response: %w", err)
	}
	if len(root) == 0 {
		return "", fmt.Errorf("empty gtx response")
	}
	var segments [][]json.RawMessage
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("decode gtx segments: %w", err)
	}
	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var part string
		if err := json.Unmarshal(seg[0], &part); err != nil {
			continue
		}
		sb.WriteString(part)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no segments in gtx response")
	}
	return sb.String(), nil
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus any `json:"responseStatus"` // number or string depending on outcome
}

// translateMyMemory calls the MyMemory public endpoint.
func translateMyMemory(ctx context.Context, text, srcLang, dstLang string) (string, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", srcLang+"|"+dstLang)

	body, err := translateFetch(ctx, cfg.TranslateMyMemBase+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	var resp myMemoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode mymemory response: %w", err)
	}
	if resp.ResponseData.TranslatedText == "" {
		return "", fmt.Errorf("empty mymemory translation")
	}
	return resp.ResponseData.TranslatedText, nil
}

func translateFetch(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translate backend status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 256*1024))
}
