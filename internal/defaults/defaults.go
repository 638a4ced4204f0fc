// Package defaults holds the built-in study content shown before the first
// successful fetch and seeded into an empty database.
package defaults

import "github.com/yuluo11/CET-Smart-Learn/internal/entities"

// Words is the built-in vocabulary sample.
func Words() []entities.Word {
	return []entities.Word{
		{
			Word:         "Resilient",
			Phonetic:     "/rɪˈzɪliənt/",
			DefinitionEn: "Able to withstand or recover quickly from difficult conditions; strong enough to survive.",
			DefinitionCn: "有弹性的；能迅速恢复活力的；适应性强的。",
			ExampleEn:    "Economists remain optimistic that the global market is resilient enough to withstand current fluctuations.",
			ExampleCn:    "经济学家仍持乐观态度，认为全球市场有足够的韧性来抵御当前的波动。",
			Source:       "历年六级真题",
			Level:        entities.LevelCET6,
		},
		{
			Word:         "Acknowledge",
			Phonetic:     "/əkˈnɒl.ɪdʒ/",
			DefinitionEn: "Accept or admit the existence or truth of.",
			DefinitionCn: "v. 承认；致谢；报偿",
			ExampleEn:    "The government acknowledged that the tax was unfair.",
			ExampleCn:    "政府承认这项税收是不公平的。",
			Source:       "CET-6 核心词汇",
			Level:        entities.LevelCET6,
		},
		{
			Word:         "Consistent",
			Phonetic:     "/kənˈsɪs.tənt/",
			DefinitionEn: "Acting or done in the same way over time, especially so as to be fair or accurate.",
			DefinitionCn: "adj. 一致的；连续的；始终如一的",
			ExampleEn:    "The results are consistent with earlier research.",
			ExampleCn:    "这些结果与早期的研究一致。",
			Source:       "CET-4 核心词汇",
			Level:        entities.LevelCET4,
		},
	}
}

// Article is the built-in fallback reading passage used while the articles
// collection is empty.
func Article() entities.Article {
	return entities.Article{
		Title:      "The Future of Renewable Energy",
		Level:      entities.LevelCET6,
		ReadTime:   "12 分钟阅读",
		Difficulty: entities.DifficultyHard,
		Content: `The global shift toward renewable energy resources, such as solar and wind power, is becoming increasingly sustainable in modern infrastructure. The integration of advanced technology ensures that power grids can handle fluctuating energy inputs efficiently.

"As we transition away from fossil fuels, the global economy faces both challenges and opportunities. Innovative solutions are required to store energy for periods when the sun is not shining."

Engineers are exploring ways to mitigate the environmental impact of battery production. While the transition presents considerable hurdles, the potential for a carbon-neutral future remains the primary incentive for international cooperation.

Furthermore, the implementation of smart grids allows for real-time monitoring of energy consumption. This paradigm shift in how we distribute electricity is pivotal to achieving long-term climate goals.`,
		Keywords: []string{"renewable", "sustainable", "infrastructure", "efficiently", "mitigate", "considerable", "incentive", "implementation", "paradigm", "pivotal"},
	}
}

// Mistakes is the built-in mistake sample.
func Mistakes() []entities.UserMistake {
	return []entities.UserMistake{
		{
			Title:       "Accommodate",
			Type:        entities.MistakeTypeSpelling,
			Description: `Your spelling: "Acomodate". Needs double 'c' and 'm'.`,
			Category:    "CET-4 词汇",
		},
		{
			Title:       "Subject-Verb Agreement",
			Type:        entities.MistakeTypeGrammar,
			Description: `"The team are..." -> "The team is..."`,
			Category:    "CET-4 词汇",
		},
		{
			Title:       "Affect vs Effect",
			Type:        entities.MistakeTypeMeaning,
			Description: "Confused verb 'affect' with noun 'effect'.",
			Category:    "CET-4 词汇",
		},
	}
}
