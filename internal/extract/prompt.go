package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/na2kera/ai-rent-navi/constants"
)

// BuildPrompt composes the extraction instruction sent with the image.
// The code dictionaries are rendered from the canonical enumerations so the
// prompt can never drift from what the rest of the service accepts.
func BuildPrompt() string {
	parts := []string{
		"この画像から賃貸物件情報を抽出し、JSON形式で返してください。",
		"以下のキーを使用してください（存在しない項目は null）：",
		"- prefecture: 都道府県名（例: 東京都）",
		"- city: 市区町村名（例: 杉並区）",
		"- postal_code: 郵便番号（ハイフンなし、7桁の数字文字列）",
		"- address: 住所（市区町村名以降）",
		"- nearest_station: 最寄り駅名（駅名のみ。路線名や記号は除去。末尾の「駅」は付けない）",
		"- distance_from_station: 最寄駅からの分数（数値、分）",
		"- area: 面積（㎡、数値。畳/帖表記は1畳=1.62㎡で換算して必ず㎡で返す）",
		"- age: 築年数（数値。「新築」「築浅」などは 0 とみなす）",
		"- structure: 構造（数値: " + codeLine(constants.StructureLabels()) + "）",
		"- layout: 間取り（数値: " + codeLine(constants.LayoutLabels()) + "）",
		"- rent: 家賃（円、数値。記号やカンマは除去）",
		"- management_fee: 管理費（円、数値。記号やカンマは除去）",
		"- total_units: 総戸数（数値）",
		"",
		"出力はJSONのみ。説明文は不要です。",
		"数値フィールドは数値型で返し、通貨記号・カンマ・全角スペースは除去してください。",
		"文字列フィールドは前後の空白を除去してください。",
		"判断できない・記載がない場合は null を返してください。推測で補完しないでください。",
	}
	return strings.Join(parts, "\n")
}

func codeLine(labels map[int]string) string {
	codes := make([]int, 0, len(labels))
	for c := range labels {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	entries := make([]string, len(codes))
	for i, c := range codes {
		entries[i] = fmt.Sprintf("%d=%s", c, labels[c])
	}
	return strings.Join(entries, ", ")
}
