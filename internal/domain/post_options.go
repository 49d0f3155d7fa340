package domain

// PostStyle は投稿のトーンを表す定数です
type PostStyle string

const (
	PostStyleProfessional PostStyle = "professional"
	PostStyleHype         PostStyle = "hype"
	PostStyleEducational  PostStyle = "educational"
	PostStyleContrarian   PostStyle = "contrarian"
	PostStyleMeme         PostStyle = "meme"
)

// PostFormat は投稿の形式を表す定数です
type PostFormat string

const (
	PostFormatSingle PostFormat = "single"
	PostFormatThread PostFormat = "thread"
)

// Platform は投稿先のプラットフォームを表す定数です
type Platform string

const (
	PlatformX        Platform = "x"
	PlatformLinkedIn Platform = "linkedin"
)

// optionData は、選択肢の値と表示名の組です
type optionData struct {
	Value       string
	DisplayName string
}

var postStyles = []optionData{
	{string(PostStyleProfessional), "Professional & Insightful"},
	{string(PostStyleHype), "Excited & Hype"},
	{string(PostStyleEducational), "Educational & Tutorial"},
	{string(PostStyleContrarian), "Skeptical & Contrarian"},
	{string(PostStyleMeme), "Witty & Casual"},
}

var postFormats = []optionData{
	{string(PostFormatSingle), "Short Post"},
	{string(PostFormatThread), "Thread / Long-form"},
}

var platforms = []optionData{
	{string(PlatformX), "X (Twitter)"},
	{string(PlatformLinkedIn), "LinkedIn"},
}

func lookupDisplayName(table []optionData, value string) (string, bool) {
	for _, o := range table {
		if o.Value == value {
			return o.DisplayName, true
		}
	}
	return "", false
}

// DisplayName はPostStyleのプロンプト用の表示名を返します
func (s PostStyle) DisplayName() string {
	if name, ok := lookupDisplayName(postStyles, string(s)); ok {
		return name
	}
	return string(s)
}

// IsValid は、既知のスタイルかどうかを判定します
func (s PostStyle) IsValid() bool {
	_, ok := lookupDisplayName(postStyles, string(s))
	return ok
}

// DisplayName はPostFormatの表示名を返します
func (f PostFormat) DisplayName() string {
	if name, ok := lookupDisplayName(postFormats, string(f)); ok {
		return name
	}
	return string(f)
}

// IsValid は、既知の形式かどうかを判定します
func (f PostFormat) IsValid() bool {
	_, ok := lookupDisplayName(postFormats, string(f))
	return ok
}

// DisplayName はPlatformの表示名を返します
func (p Platform) DisplayName() string {
	if name, ok := lookupDisplayName(platforms, string(p)); ok {
		return name
	}
	return string(p)
}

// IsValid は、既知のプラットフォームかどうかを判定します
func (p Platform) IsValid() bool {
	_, ok := lookupDisplayName(platforms, string(p))
	return ok
}

// AllPostStyles はすべてのPostStyleを返します
func AllPostStyles() []PostStyle {
	return []PostStyle{
		PostStyleProfessional,
		PostStyleHype,
		PostStyleEducational,
		PostStyleContrarian,
		PostStyleMeme,
	}
}

// AllPostFormats はすべてのPostFormatを返します
func AllPostFormats() []PostFormat {
	return []PostFormat{PostFormatSingle, PostFormatThread}
}

// AllPlatforms はすべてのPlatformを返します
func AllPlatforms() []Platform {
	return []Platform{PlatformX, PlatformLinkedIn}
}
