package arrivals

import (
	"fmt"
	"strings"
)

const (
	unavailableText    = "Информация по остановке временно недоступна."
	routeNotFoundText  = "Информация по маршруту %s не найдена."
	exhaustedText      = "Не удалось получить информацию после %d %s."
	fetchFailedText    = "Ошибка при получении данных: %v"
	unknownStopText    = "Остановка %s не найдена."
	unknownResultText  = "Не удалось получить информацию."
	attemptsSingular   = "попытки"
	attemptsGenitivePl = "попыток"
)

// Render formats the records one per line, in order.
func Render(records []ArrivalRecord) string {
	if len(records) < 1 {
		return unavailableText
	}

	lines := make([]string, 0, len(records))
	for _, record := range records {
		lines = append(lines, record.Line())
	}
	return strings.Join(lines, "\n")
}

// RenderResult formats any retrieval outcome.
func RenderResult(result *Result) string {
	if result == nil {
		return unknownResultText
	}

	switch result.Kind {
	case ResultSuccess:
		return Render(result.Records)
	case ResultRouteNotFound:
		return fmt.Sprintf(routeNotFoundText, result.RouteNumber)
	case ResultExhausted:
		return fmt.Sprintf(exhaustedText, result.Attempts, attemptsWord(result.Attempts))
	case ResultFetchFailed:
		return fmt.Sprintf(fetchFailedText, result.Err)
	}
	return unknownResultText
}

// RenderUnknownStop formats the reply for a stop missing from the directory.
func RenderUnknownStop(stop string) string {
	return fmt.Sprintf(unknownStopText, stop)
}

// "после 1 попытки", "после 21 попытки", otherwise "после N попыток".
func attemptsWord(n int) string {
	if n%10 == 1 && n%100 != 11 {
		return attemptsSingular
	}
	return attemptsGenitivePl
}
