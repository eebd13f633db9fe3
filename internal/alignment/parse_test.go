package alignment

import "testing"

func TestParseResponse(t *testing.T) {
	content := `【匹配事件】
E1|完全一致|0.95|解说逐句复述了进屋情节
E2|概括|0.8
【匹配设定】
S1|改写|0.7|换了说法描述书房
【跳过内容】
这里作者吐槽了一下主角的智商|与原著无关`

	events, settings, skips := parseResponse(content, nil)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].EventID != "E1" || events[0].MatchType != MatchExact || events[0].Confidence != 0.95 {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[0].Explanation == "" {
		t.Error("event 0 explanation dropped")
	}
	if events[1].EventID != "E2" || events[1].MatchType != MatchSummarize || events[1].Explanation != "" {
		t.Errorf("event 1 = %+v", events[1])
	}
	if len(settings) != 1 || settings[0].SettingID != "S1" || settings[0].MatchType != MatchParaphrase {
		t.Errorf("settings = %+v", settings)
	}
	if len(skips) != 1 || skips[0].Reason != "与原著无关" {
		t.Errorf("skips = %+v", skips)
	}
}

func TestParseResponseEmptySections(t *testing.T) {
	content := "【匹配事件】\n无\n【匹配设定】\n无\n【跳过内容】\n无"
	events, settings, skips := parseResponse(content, nil)
	if len(events) != 0 || len(settings) != 0 || len(skips) != 0 {
		t.Fatalf("expected all empty, got %d/%d/%d", len(events), len(settings), len(skips))
	}
}

func TestParseResponseDropsMalformedRecords(t *testing.T) {
	content := `【匹配事件】
E1|完全一致|0.9
|完全一致|0.9|缺ID
E2|不存在的类型|0.9
E3|改写|不是数字
E4`
	events, _, _ := parseResponse(content, nil)
	if len(events) != 1 || events[0].EventID != "E1" {
		t.Fatalf("events = %+v, want only E1", events)
	}
}

func TestParseResponseClampsConfidence(t *testing.T) {
	content := "【匹配事件】\nE1|完全一致|1.5\nE2|改写|-0.2"
	events, _, _ := parseResponse(content, nil)
	if len(events) != 2 {
		t.Fatalf("events = %d", len(events))
	}
	if events[0].Confidence != 1 || events[1].Confidence != 0 {
		t.Errorf("confidences = %v, %v", events[0].Confidence, events[1].Confidence)
	}
}

func TestParseResponseEnglishLabels(t *testing.T) {
	content := "【匹配事件】\nE1|Exact|0.9\nE2|paraphrase|0.8"
	events, _, _ := parseResponse(content, nil)
	if len(events) != 2 || events[0].MatchType != MatchExact || events[1].MatchType != MatchParaphrase {
		t.Fatalf("events = %+v", events)
	}
}

func TestParseResponseKeepsNoneMatches(t *testing.T) {
	content := "【匹配事件】\nE1|无关|0.2|只是提了一句\n【匹配设定】\nS1|none|0.1"
	events, settings, _ := parseResponse(content, nil)
	if len(events) != 1 || events[0].MatchType != MatchNone {
		t.Fatalf("events = %+v", events)
	}
	if len(settings) != 1 || settings[0].MatchType != MatchNone {
		t.Fatalf("settings = %+v", settings)
	}
}

func TestParseResponseNoSections(t *testing.T) {
	events, settings, skips := parseResponse("抱歉，我无法处理这个请求。", nil)
	if len(events) != 0 || len(settings) != 0 || len(skips) != 0 {
		t.Fatal("expected empty result for unstructured response")
	}
}
