package segmentation

import (
	"fmt"
	"regexp"
	"strings"
)

// headerPattern and rangePattern match the bullet-list format both passes
// are instructed to emit. The range separator tolerates the variants models
// actually produce.
var (
	headerPattern = regexp.MustCompile(`^\s*段落\s*(\d+)\s*[:：]\s*(.*)$`)
	rangePattern  = regexp.MustCompile(`句子范围\s*[:：]\s*(\d+)\s*[-~－至]\s*(\d+)`)
)

const proposeSystemPrompt = `你是一个文本分段助手。用户会提供一段编号好的句子列表（小说解说音频的转写稿）。
请按语义将这些句子划分为若干段落，每个段落讲述一个连贯的内容单元。

输出格式要求（严格遵守，不要输出其他内容）：
段落1：<一句话描述该段内容>
句子范围：<起始句号>-<结束句号>
段落2：<一句话描述该段内容>
句子范围：<起始句号>-<结束句号>
（以此类推）

规则：
1. 句子范围必须使用用户提供的句子编号，且连续覆盖全部句子，不重叠、不遗漏。
2. 每个段落至少包含一个句子。
3. 不要改写、删减或补充任何句子内容。`

const critiqueSystemPrompt = `你是一个文本分段审校助手。用户会提供编号好的句子列表以及一份初稿分段方案。
请检查初稿分段是否合理：段落边界是否落在语义转折处，是否有段落过碎或过长。

如果初稿分段已经合理，只回复：无需修改
如果需要调整，请输出完整的修订分段方案，格式与初稿相同：
段落1：<一句话描述该段内容>
句子范围：<起始句号>-<结束句号>
（以此类推，必须覆盖全部句子，不重叠、不遗漏）`

const categorySystemPrompt = `你是一个内容分类助手。用户会提供若干编号的文本段落，请为每个段落标注类别：
A = 世界观或设定介绍
B = 情节推进
C = 解说者的旁白、吐槽或与故事无关的评论

只输出一个JSON对象，键为段落编号（字符串），值为类别字母。例如：
{"1": "B", "2": "A", "3": "B"}`

// numberSentences renders the 1-based sentence list both passes consume.
func numberSentences(sentences []string) string {
	var b strings.Builder
	for i, s := range sentences {
		fmt.Fprintf(&b, "%d. %s\n", i+1, s)
	}
	return b.String()
}

func proposeUserPrompt(sentences []string) string {
	return fmt.Sprintf("以下是编号句子列表（共%d句）：\n\n%s", len(sentences), numberSentences(sentences))
}

func critiqueUserPrompt(sentences []string, draftOutput string) string {
	return fmt.Sprintf("编号句子列表（共%d句）：\n\n%s\n初稿分段方案：\n\n%s",
		len(sentences), numberSentences(sentences), strings.TrimSpace(draftOutput))
}

func categoryUserPrompt(segments []Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "以下是%d个段落：\n\n", len(segments))
	for _, seg := range segments {
		fmt.Fprintf(&b, "%d. %s\n\n", seg.Index, seg.Content)
	}
	return b.String()
}
