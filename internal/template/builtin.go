package template

import (
	"github.com/promptarena/promptarena/internal/models"
)

// DefaultSystemPrompt is used when an execution request supplies no system
// prompt of its own.
const DefaultSystemPrompt = "你是一个专业的群聊分析助手。"

// builtins is the shipped prompt library, keyed by group type, time
// granularity, and style. Not every combination exists; LookupBuiltin falls
// back to the analytical style within the same type and granularity.
var builtins = map[models.GroupType]map[models.TimeGranularity]map[models.PromptStyle]string{
	models.GroupInvestment: {
		models.GranularityDaily: {
			models.StyleAnalytical: `你是一位专业的投资分析师。请分析以下投资群的聊天记录。

聊天记录时间范围：{start_date} 至 {end_date}
{member_filter_text}

请从以下几个维度进行分析：
1. 今日讨论的主要股票/基金/数字货币
2. 群内情绪倾向（看多/看空/中性）
3. 被提及最多的投资标的及其讨论热度
4. 值得关注的投资观点和分析
5. 风险提示和注意事项

聊天记录：
{chat_content}

请给出结构化的分析报告。`,
			models.StyleSummary: `请简要总结以下投资群今日({start_date})的讨论要点：

{member_filter_text}

聊天记录：
{chat_content}

请用简洁的方式列出：
- 热门话题（3-5个）
- 市场情绪
- 重要观点
- 值得关注的标的`,
			models.StyleInsight: `作为资深投资顾问，请从以下投资群聊天记录中挖掘有价值的投资洞察。

时间：{start_date}
{member_filter_text}

聊天记录：
{chat_content}

请提供：
1. 独特的投资视角和逆向思维观点
2. 可能被忽略的投资机会
3. 潜在的风险信号
4. 群体心理分析`,
		},
		models.GranularityMonthly: {
			models.StyleAnalytical: `请对投资群{start_date}至{end_date}期间的讨论进行月度复盘分析。

{member_filter_text}

聊天记录：
{chat_content}

分析要点：
1. 本月讨论最多的投资标的排名
2. 群内观点的准确率回顾（如果有后续验证的话）
3. 月度投资情绪变化曲线
4. 重要的市场事件及群内反应
5. 活跃成员贡献度分析
6. 下月投资建议和关注方向`,
		},
	},
	models.GroupScience: {
		models.GranularityDaily: {
			models.StyleAnalytical: `你是一位科学传播专家。请分析以下科普群的聊天记录。

时间：{start_date} 至 {end_date}
{member_filter_text}

聊天记录：
{chat_content}

请分析：
1. 今日讨论的科学话题和领域
2. 分享的科普文章/视频质量评估
3. 常见的科学误解和纠正
4. 有价值的科学讨论和观点交锋
5. 建议进一步学习的科学主题`,
			models.StyleSummary: `请总结科普群今日({start_date})的讨论内容：

{member_filter_text}

聊天记录：
{chat_content}

请列出：
- 讨论的科学领域
- 有趣的科学事实
- 推荐的科普资源
- 悬而未决的科学问题`,
		},
	},
	models.GroupLearning: {
		models.GranularityDaily: {
			models.StyleAnalytical: `你是一位学习顾问。请分析以下学习群的聊天记录。

时间：{start_date} 至 {end_date}
{member_filter_text}

聊天记录：
{chat_content}

请分析：
1. 今日讨论的学习主题和知识点
2. 成员提出的问题及解答质量
3. 分享的学习资源价值评估
4. 学习方法和技巧讨论
5. 学习进度和目标完成情况
6. 建议的学习资源和下一步计划`,
			models.StyleInsight: `作为学习教练，请从以下学习群聊天中提取学习洞察。

时间：{start_date}
{member_filter_text}

聊天记录：
{chat_content}

请提供：
1. 高效学习者的学习策略
2. 常见的学习误区和改进建议
3. 值得借鉴的学习方法
4. 学习社群互助的最佳实践`,
		},
	},
	models.GroupTechnology: {
		models.GranularityDaily: {
			models.StyleAnalytical: `你是一位技术专家。请分析以下技术群的聊天记录。

时间：{start_date} 至 {end_date}
{member_filter_text}

聊天记录：
{chat_content}

请分析：
1. 讨论的技术话题和技术栈
2. 技术问题及解决方案汇总
3. 新技术/工具/框架的讨论
4. 代码相关讨论和最佳实践
5. 技术趋势洞察
6. 推荐的技术资源`,
		},
	},
	models.GroupHealth: {
		models.GranularityDaily: {
			models.StyleAnalytical: `你是一位健康顾问。请分析以下健康群的聊天记录。

时间：{start_date} 至 {end_date}
{member_filter_text}

聊天记录：
{chat_content}

请分析：
1. 讨论的健康话题
2. 分享的健康知识准确性评估
3. 健康建议和提醒
4. 运动/饮食/睡眠相关讨论
5. 需要专业医疗建议的情况标注

注意：本分析仅供参考，不构成医疗建议。`,
		},
	},
}

// LookupBuiltin returns the shipped template for the given classification,
// falling back to the analytical style. The boolean reports whether any
// template was found.
func LookupBuiltin(gt models.GroupType, gran models.TimeGranularity, style models.PromptStyle) (string, bool) {
	byGran, ok := builtins[gt]
	if !ok {
		return "", false
	}
	byStyle, ok := byGran[gran]
	if !ok {
		return "", false
	}
	if t, ok := byStyle[style]; ok {
		return t, true
	}
	if t, ok := byStyle[models.StyleAnalytical]; ok {
		return t, true
	}
	return "", false
}

// BuiltinVariant describes one entry of the shipped library, as returned to
// API callers.
type BuiltinVariant struct {
	GroupType       models.GroupType       `json:"group_type"`
	TimeGranularity models.TimeGranularity `json:"time_granularity"`
	Style           models.PromptStyle     `json:"style"`
	Template        string                 `json:"template"`
	IsBuiltin       bool                   `json:"is_builtin"`
}

// AllBuiltins returns every shipped template in a stable order, for the
// library listing endpoint.
func AllBuiltins() []BuiltinVariant {
	granularities := []models.TimeGranularity{
		models.GranularityDaily, models.GranularityWeekly, models.GranularityMonthly,
		models.GranularityQuarterly, models.GranularityYearly, models.GranularityCustom,
	}
	styles := []models.PromptStyle{
		models.StyleAnalytical, models.StyleSummary, models.StyleInsight,
		models.StyleComparative, models.StyleTrending, models.StyleMemberFocused,
	}

	var out []BuiltinVariant
	for _, gt := range models.GroupTypes() {
		for _, gran := range granularities {
			out = append(out, ListBuiltins(gt, gran, styles)...)
		}
	}
	return out
}

// ListBuiltins returns the shipped templates for a group type and
// granularity, one per requested style that exists in the library.
func ListBuiltins(gt models.GroupType, gran models.TimeGranularity, styles []models.PromptStyle) []BuiltinVariant {
	var out []BuiltinVariant
	for _, style := range styles {
		byGran, ok := builtins[gt]
		if !ok {
			continue
		}
		byStyle, ok := byGran[gran]
		if !ok {
			continue
		}
		t, ok := byStyle[style]
		if !ok {
			continue
		}
		out = append(out, BuiltinVariant{
			GroupType:       gt,
			TimeGranularity: gran,
			Style:           style,
			Template:        t,
			IsBuiltin:       true,
		})
	}
	return out
}
