package templates

import "strings"

// Generator types with compiled-in independent prompts
const (
	TypeFullNameTW    = "full-name-tw"
	TypeCompanyNameTW = "company-name-tw"
	TypeAddressTW     = "address-tw"
)

var defaultBases = map[string]string{
	TypeFullNameTW:    "請生成 {{count}} 個不同的、符合台灣習慣的中文姓名",
	TypeCompanyNameTW: "請生成 {{count}} 個不同的、符合台灣風格的隨機公司名稱",
	TypeAddressTW:     "請生成 {{count}} 個不同的、真實且詳細的台灣地址",
}

const independentSuffix = "。\n" +
	"請確保每一個結果都是獨一無二的，並且每一個結果佔一行，用換行符分隔。\n" +
	"不要包含編號、引號或其他多餘的字符。\n" +
	"(內部參考碼: %s)"

// DefaultCoherentBody is used for survey rows when no template is given
var DefaultCoherentBody = strings.Join([]string{
	"你是一位正在填寫問卷的受訪者。關於你本人，已經有一些已知資訊，請根據這些資訊，扮演一個符合這些資訊的虛構人物來回答以下問題。",
	"",
	"# 已知資訊:",
	PlaceholderContext,
	"",
	"# 需要回答的問題 (包含格式要求):",
	PlaceholderQuestionLines,
	"",
	"# 重要規則:",
	"1. 你扮演的角色必須與上述「已知資訊」的客觀事實保持一致（例如，身分證號碼所隱含的資訊）。",
	"2. 你的其餘回答應該圍繞這個角色展開，使其看起來像一個真實的人。",
	"3. 每個回答都必須嚴格遵守其「格式要求」。",
	"4. 請嚴格按照下面的 JSON 格式回傳你需要回答問題的答案，不要包含任何額外解釋或文字。",
	"",
	"# JSON 格式範例:",
	PlaceholderJSONFormatExample,
}, "\n")

// IsDefaultType reports whether generatorType has a compiled-in prompt
func IsDefaultType(generatorType string) bool {
	_, ok := defaultBases[generatorType]
	return ok
}

// DefaultTypes lists the compiled-in generator types
func DefaultTypes() []string {
	return []string{TypeFullNameTW, TypeCompanyNameTW, TypeAddressTW}
}
