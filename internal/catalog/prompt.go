package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"moviepicker/internal/textutil"
	"moviepicker/internal/watchlist"
)

const (
	recommendationsLabel = "РЕКОМЕНДАЦИИ:"
	explanationLabel     = "ОБЪЯСНЕНИЕ:"
	plotExcerptRunes     = 200
	castInPrompt         = 3
)

func describePrompt(title, plot string) string {
	return fmt.Sprintf(`Напиши очень краткое описание фильма "%s" на русском языке (2-3 предложения).
Опиши главную идею и атмосферу фильма, не раскрывая спойлеров.

Полный сюжет для анализа:
%s

Ответь только описанием, без вступлений и пояснений.`, title, plot)
}

func recommendPrompt(query string, movies []watchlist.Movie, limit int) string {
	lines := make([]string, 0, len(movies))
	for _, m := range movies {
		lines = append(lines, candidateLine(m))
	}
	return fmt.Sprintf(`Ты — помощник по выбору фильмов. Пользователь хочет посмотреть что-то из своего списка.

Запрос пользователя: "%s"

Список фильмов пользователя (непросмотренные):
%s

Выбери от 1 до %d наиболее подходящих фильмов.
Отвечай строго в формате:
%s [ID1, ID2, ID3]
%s Почему эти фильмы подходят под запрос (2-3 предложения на русском).

Если ни один фильм не подходит, напиши:
%s []
%s Причина, почему ничего не подходит.`,
		query, strings.Join(lines, "\n"), limit,
		recommendationsLabel, explanationLabel, recommendationsLabel, explanationLabel)
}

func candidateLine(m watchlist.Movie) string {
	year := "год неизвестен"
	if m.Year > 0 {
		year = strconv.Itoa(m.Year)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[ID:%d] «%s» (%s)", m.ID, m.Title, year)
	if len(m.Genres) > 0 {
		b.WriteString(" — " + strings.Join(m.Genres, ", "))
	}
	if len(m.Cast) > 0 {
		cast := m.Cast
		if len(cast) > castInPrompt {
			cast = cast[:castInPrompt]
		}
		b.WriteString(" | Актёры: " + strings.Join(cast, ", "))
	}
	switch {
	case m.Description != "":
		b.WriteString(" | " + m.Description)
	case m.Plot != "":
		b.WriteString(" | " + textutil.Truncate(m.Plot, plotExcerptRunes) + "...")
	}
	return b.String()
}

// parseRecommendation reads the ids and explanation from the model's answer.
// A malformed id list yields no ids. When the explanation label has nothing
// after it on its line, the following lines are used.
func parseRecommendation(response string) ([]int64, string) {
	var (
		ids         []int64
		explanation string
	)
	lines := strings.Split(response, "\n")
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, recommendationsLabel):
			ids = parseIDList(strings.TrimPrefix(line, recommendationsLabel))
		case strings.HasPrefix(line, explanationLabel):
			explanation = strings.TrimSpace(strings.TrimPrefix(line, explanationLabel))
		}
	}
	if explanation == "" {
		for i, line := range lines {
			if strings.HasPrefix(line, explanationLabel) {
				rest := strings.Join(lines[i:], "\n")
				explanation = strings.TrimSpace(strings.Replace(rest, explanationLabel, "", 1))
				break
			}
		}
	}
	return ids, explanation
}

func parseIDList(value string) []int64 {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}
