// Package nlquery turns free-form Russian questions about video statistics
// into a single-scalar SQL query. Known question shapes are rendered from
// fixed templates; everything else goes through a generative model whose
// output is repaired against the entities extracted from the question.
package nlquery

import "fmt"

// SchemaDescription is the only channel by which domain knowledge reaches the
// generative model. It must be kept in lockstep with the migrations.
const SchemaDescription = `База данных PostgreSQL с двумя таблицами:

1. videos - итоговая статистика по видео:
   - id UUID PRIMARY KEY
   - creator_id VARCHAR
   - video_created_at TIMESTAMP WITH TIME ZONE
   - views_count INTEGER
   - likes_count INTEGER
   - comments_count INTEGER
   - reports_count INTEGER
   - created_at, updated_at TIMESTAMP

2. video_snapshots - почасовые замеры:
   - id VARCHAR PRIMARY KEY
   - video_id UUID REFERENCES videos(id)
   - views_count, likes_count, comments_count, reports_count INTEGER
   - delta_views_count, delta_likes_count, delta_comments_count, delta_reports_count INTEGER
   - created_at TIMESTAMP WITH TIME ZONE
   - updated_at TIMESTAMP

Правила:
- COUNT(*) для подсчета видео
- SUM(delta_*) для прироста за период
- COUNT(DISTINCT video_id) для уникальных видео
- Даты: "28 ноября 2025" = '2025-11-28', "с 1 по 5 ноября 2025" = BETWEEN '2025-11-01' AND '2025-11-05'
- Для фильтрации по дате публикации: WHERE video_created_at >= '2025-11-01' AND video_created_at <= '2025-11-05'
- Для фильтрации по дате замера: WHERE created_at >= '2025-11-01' AND created_at < '2025-11-06'`

// SystemPrompt is the fixed system message for the generative translator.
const SystemPrompt = "Ты эксперт по SQL и PostgreSQL. Твоя задача - преобразовать вопрос на русском языке в SQL запрос."

// BuildPrompt assembles the user message: schema, the question and the output
// contract (bare SQL, one number, no markdown).
func BuildPrompt(question string) string {
	return fmt.Sprintf(`%s

Вопрос пользователя: "%s"

Напиши SQL запрос для PostgreSQL, который вернет одно число.

Требования:
- Только SQL, без markdown, без объяснений
- Запрос должен возвращать одно число через SELECT
- Правильно преобразуй русские даты в формат 'YYYY-MM-DD'
- Для диапазона дат используй BETWEEN или >= и <=
- Если вопрос про прирост - используй SUM(delta_*) из video_snapshots
- Если вопрос про количество видео - используй COUNT(*) или COUNT(DISTINCT ...)`, SchemaDescription, question)
}
