package alignment

import (
	"fmt"
	"strings"

	"skald/internal/timeline"
)

// Section markers the model is instructed to emit. Parsing keys off these
// exact strings.
const (
	sectionEvents   = "【匹配事件】"
	sectionSettings = "【匹配设定】"
	sectionSkipped  = "【跳过内容】"
)

const alignSystemPrompt = `你是一个剧情对齐助手。用户会提供一段小说解说的文字片段，以及原著提取的事件列表和设定列表。
请判断该片段讲述了哪些事件、涉及了哪些设定，并指出片段中与原著无关的内容。

输出格式要求（严格遵守，三个部分都必须出现，没有内容时在该部分下写"无"）：
【匹配事件】
<事件ID>|<匹配类型>|<置信度0到1>|<简要说明>
【匹配设定】
<设定ID>|<匹配类型>|<置信度0到1>|<简要说明>
【跳过内容】
<片段中无关内容的摘录>|<原因>

匹配类型只能是以下之一：
完全一致（逐句复述原著）
改写（换了说法但内容相同）
概括（压缩了原著内容）
扩写（补充了原著没有的细节）
无关（列出的条目与片段没有实际对应）`

func alignUserPrompt(content string, tl *timeline.Timeline) string {
	var b strings.Builder
	b.WriteString("解说片段：\n")
	b.WriteString(strings.TrimSpace(content))
	b.WriteString("\n\n事件列表：\n")
	for _, event := range tl.Events {
		fmt.Fprintf(&b, "%s: %s\n", event.ID, event.Summary)
	}
	b.WriteString("\n设定列表：\n")
	for _, setting := range tl.Settings {
		fmt.Fprintf(&b, "%s: %s\n", setting.ID, setting.Summary)
	}
	return b.String()
}

// matchTypeLabels maps the labels the prompt allows (plus the English spellings
// some models substitute) onto the canonical types.
var matchTypeLabels = map[string]MatchType{
	"完全一致":       MatchExact,
	"改写":         MatchParaphrase,
	"概括":         MatchSummarize,
	"扩写":         MatchExpand,
	"无关":         MatchNone,
	"exact":      MatchExact,
	"paraphrase": MatchParaphrase,
	"summarize":  MatchSummarize,
	"expand":     MatchExpand,
	"none":       MatchNone,
}
