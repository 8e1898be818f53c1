package normalize

import (
	"strings"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// Alias sets for the four leaderboard source dialects (structured API array,
// nested search payload, scraped embedded JSON, flat dataset dump). One
// normalizer serves all four, which is why the lists are wide.
var (
	entryContainerKeys = []string{"data", "leaders", "results", "accounts"}
	entryAddressKeys   = []string{
		"proxyWallet", "address", "wallet", "walletAddress", "userAddress",
		"proxy_address", "owner", "trader", "account",
	}
	entryRankKeys   = []string{"rank", "position", "place"}
	entryPnlKeys    = []string{"pnl", "profit", "realizedPnl", "realized_pnl", "cashPnl", "profitLoss", "totalPnl", "amount"}
	entryVolumeKeys = []string{"volume", "vol", "totalVolume", "volumeTraded", "amountTraded", "usdVolume"}
	entryRoiKeys    = []string{"roi", "roiPercent", "returnOnInvestment", "percentGain"}
	entryTradesKeys = []string{"trades", "tradeCount", "numTrades", "transactions"}
	entryNameKeys   = []string{"displayName", "name", "userName", "username", "ens", "pseudonym", "handle"}
	entryUserKeys   = []string{"user", "profile"}
	entryAvatarKeys = []string{"avatar", "avatarUrl", "profileImage", "profile_image", "image"}
)

// EntryArray locates the entry array inside a payload of unknown shape. It
// tries the container aliases in order and falls back to the payload itself
// when it is already an array; the first non-empty match wins, containers are
// never merged.
func EntryArray(payload any) []any {
	if m, ok := payload.(map[string]any); ok {
		for _, k := range entryContainerKeys {
			if arr, ok := m[k].([]any); ok && len(arr) > 0 {
				return arr
			}
		}
		return nil
	}
	if arr, ok := payload.([]any); ok {
		return arr
	}
	return nil
}

// Entries normalizes a raw leaderboard payload into entries. Rows lacking
// every address alias are skipped entirely; this is the only hard-reject
// condition. Mapping runs over the full input and truncation to limit is a
// final slice, since earlier rows may have been rejected.
func Entries(payload any, limit int) []domain.LeaderboardEntry {
	arr := EntryArray(payload)
	out := make([]domain.LeaderboardEntry, 0, len(arr))

	for i, item := range arr {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		addr := extractAddress(raw)
		if addr == "" {
			continue
		}

		entry := domain.LeaderboardEntry{Address: addr}

		if r, ok := FirstNumber(raw, entryRankKeys...); ok && r > 0 {
			entry.Rank = int(r)
		} else {
			entry.Rank = i + 1
		}

		if f, ok := FirstNumber(raw, entryPnlKeys...); ok {
			entry.Pnl = &f
		}
		if f, ok := FirstNumber(raw, entryVolumeKeys...); ok {
			entry.Volume = &f
		}
		if f, ok := FirstNumber(raw, entryRoiKeys...); ok {
			entry.Roi = &f
		} else if entry.Pnl != nil && entry.Volume != nil && *entry.Volume != 0 {
			roi := Round(*entry.Pnl / *entry.Volume * 100, 2)
			entry.Roi = &roi
		}
		if f, ok := FirstNumber(raw, entryTradesKeys...); ok {
			n := int(f)
			entry.Trades = &n
		}

		entry.DisplayName = extractDisplayName(raw, addr)
		entry.Username, _ = firstStringNested(raw, "userName", "username", "handle")
		entry.Pseudonym, _ = firstStringNested(raw, "pseudonym", "ens")
		entry.AvatarURL, _ = firstStringNested(raw, entryAvatarKeys...)

		out = append(out, entry)
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// extractAddress tries the flat address aliases and then a nested user or
// profile object. The result is always lowercased.
func extractAddress(raw map[string]any) string {
	if s, ok := FirstString(raw, entryAddressKeys...); ok {
		return strings.ToLower(s)
	}
	for _, uk := range entryUserKeys {
		if nested, ok := raw[uk].(map[string]any); ok {
			if s, ok := FirstString(nested, entryAddressKeys...); ok {
				return strings.ToLower(s)
			}
		}
	}
	return ""
}

// extractDisplayName falls through the name aliases (flat, then nested user
// object) and finally synthesizes a truncated-address placeholder.
func extractDisplayName(raw map[string]any, addr string) string {
	if s, ok := firstStringNested(raw, entryNameKeys...); ok {
		return s
	}
	return TruncateAddress(addr)
}

// firstStringNested tries keys on the row itself, then inside a nested user
// or profile object.
func firstStringNested(raw map[string]any, keys ...string) (string, bool) {
	if s, ok := FirstString(raw, keys...); ok {
		return s, true
	}
	for _, uk := range entryUserKeys {
		if nested, ok := raw[uk].(map[string]any); ok {
			if s, ok := FirstString(nested, keys...); ok {
				return s, true
			}
		}
	}
	return "", false
}

// TruncateAddress renders a wallet as "first6…last4" for display when no
// human-readable name exists. Short values pass through unchanged.
func TruncateAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
