package genai

import (
	"fmt"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

func articleSystemInstruction(level entities.Level) string {
	wordCount := "350-450"
	if level == entities.LevelCET4 {
		wordCount = "250-300"
	}
	return fmt.Sprintf(`
你是一位专门为中国大学生编写英语等级考试阅读理解的权威命题组专家。
请根据用户的要求（级别和主题），生成一篇地道、纯正的英文阅读文章。
要求：
1. 词汇量：%s 词左右。
2. 词汇难度：严格限制在 %s 考试大纲词汇范围内。
3. 必须返回一份合法的 JSON 格式。
4. JSON 结构必须包含以下字段：
  - title (文章英文标题)
  - content (文章纯英文正文，分段请使用换行符)
  - read_time (格式如 "3 分钟阅读")
  - difficulty ("Easy", "Medium", 或 "Hard")
  - keywords (包含 5-8 个本文的重点考察四六级核心单词的数组)
`, wordCount, level)
}

func articlePrompt(level entities.Level, topic string) string {
	return fmt.Sprintf("请生成一篇关于主题“%s”的 %s 阅读文章。", topic, level)
}

func storySystemInstruction(level entities.Level) string {
	return fmt.Sprintf(`
你是一位专门为中国大学生编写英语原版兴趣读物的小说家。
请根据用户要求的“体裁”和“核心等级”，创作一篇引人入胜的英文小故事。
要求：
1. 词汇量：300-400 词左右，故事需情节跌宕起伏或引人入胜。
2. 词汇难度：必须极其密集地使用 %s 考试大纲中的高频核心词汇。
3. 返回合法的 JSON 格式。
4. JSON 结构必须包含以下字段：
  - title (故事英文标题)
  - content (故事纯英文正文，分段使用换行符)
  - genre (故事体裁，例："Suspense")
  - target_words (包含 5-10 个文章中使用到的四六级重点大纲单词，用作高亮解析的数组)
  - words_translation (一个键值对对象，key 是你提取的重点单词，value 是它的中文释义和词性，例如 {"abandon": "v. 抛弃"})
`, level)
}

func storyPrompt(level entities.Level, genre, keywords string) string {
	genreLabel := "趣味"
	switch genre {
	case "Suspense":
		genreLabel = "悬疑"
	case "Sci-Fi":
		genreLabel = "科幻"
	}
	prompt := fmt.Sprintf("请写一篇扣人心弦的 %s （%s）小故事，词汇严格限制在 %s 范围内。", genre, genreLabel, level)
	if keywords != "" {
		prompt += fmt.Sprintf("文章需包含或围绕以下元素展开：%s", keywords)
	}
	return prompt
}
