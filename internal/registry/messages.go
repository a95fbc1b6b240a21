package registry

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/impactd/internal/command"
	"github.com/fyrsmithlabs/impactd/internal/project"
)

// Locale selects the reply language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

// catalog holds every user-facing text for one locale.
type catalog struct {
	help string

	defaultStatus   string
	defaultExecutor string

	created   string // id
	updated   string // id
	deleted   string // id
	statusSet string // id, status
	assigned  string // id, executor
	duplicate string // id

	listHeader string
	listLine   string // id, name, status
	listEmpty  string

	card string // id, name, problem, initiator, deadline, status, executor

	notFound       string // id
	notAnInteger   string
	unknownField   string // field list
	tooLong        string // limit
	fieldLabels    map[project.Field]string
	unknownCommand string
	dashboard      string // url

	usage map[command.Keyword]string
}

var catalogs = map[Locale]*catalog{
	LocaleEN: {
		help: "Hi! I track the lifecycle of social projects.\n\n" +
			"Commands:\n" +
			"/add - Register a new project\n" +
			"/list - List all projects\n" +
			"/info - Show a project card\n" +
			"/update - Change project details\n" +
			"/status - Change status (New -> In progress -> Done)\n" +
			"/assign - Assign an executor\n" +
			"/delete - Delete a project\n" +
			"/dashboard - Open the analytics dashboard",

		defaultStatus:   project.DefaultStatus,
		defaultExecutor: project.DefaultExecutor,

		created:   "✅ Project №%d registered!",
		updated:   "💾 Project №%d updated",
		deleted:   "🗑 Project №%d deleted",
		statusSet: "🔄 Project №%d status changed to: %s",
		assigned:  "👤 Project №%d assigned to: %s",
		duplicate: "Project №%d already exists, nothing was registered",

		listHeader: "📂 Social projects:\n\n",
		listLine:   "🔹 №%d | %s [%s]\n",
		listEmpty:  "The project list is empty",

		card: "📋 Project №%d:\n\n" +
			"📌 Name: %s\n" +
			"⚠️ Problem: %s\n" +
			"👤 Initiator: %s\n" +
			"📅 Deadline: %s\n" +
			"🔄 Status: %s\n" +
			"🛠 Executor: %s",

		notFound:       "Project №%d not found",
		notAnInteger:   "The project number must be an integer.",
		unknownField:   "Field not found. Available: %s",
		tooLong:        "Value too long: at most %d characters.",
		fieldLabels: map[project.Field]string{
			project.FieldName:      "name",
			project.FieldProblem:   "problem",
			project.FieldInitiator: "initiator",
			project.FieldDeadline:  "deadline",
			project.FieldExecutor:  "executor",
		},
		unknownCommand: "Unknown command. Send /start to see the list of commands.",
		dashboard:      "📊 The analytics dashboard is available at: %s",

		usage: map[command.Keyword]string{
			command.KeywordAdd: "Input error. Use the format:\n" +
				"/add Name, Problem, Initiator, Deadline\n" +
				"Example: /add Victory Park, Litter on the paths, A. Ivanov, 2025-05-01",
			command.KeywordUpdate: "Error. Example: /update 1, deadline, 2025-12-31",
			command.KeywordDelete: "Use: /delete project_number",
			command.KeywordInfo:   "Use: /info project_number",
			command.KeywordStatus: "Example: /status 1, In progress",
			command.KeywordAssign: "Example: /assign 1, P. Petrov",
		},
	},
	LocaleRU: {
		help: "Привет! Я бот для управления жизненным циклом социальных проектов.\n\n" +
			"Доступные команды:\n" +
			"/add - Добавить новый проект\n" +
			"/list - Список всех проектов\n" +
			"/info - Детальная карточка проекта\n" +
			"/update - Обновить данные проекта\n" +
			"/status - Изменить статус (Новый -> В работе -> Завершен)\n" +
			"/assign - Назначить исполнителя\n" +
			"/delete - Удалить проект\n" +
			"/dashboard - Перейти к аналитике",

		defaultStatus:   "Новый",
		defaultExecutor: "Не назначен",

		created:   "✅ Проект №%d успешно зарегистрирован!",
		updated:   "💾 Данные проекта №%d обновлены",
		deleted:   "🗑 Проект №%d удален из базы",
		statusSet: "🔄 Статус проекта №%d изменен на: %s",
		assigned:  "👤 На проект №%d назначен исполнитель: %s",
		duplicate: "Проект №%d уже существует, новый проект не зарегистрирован",

		listHeader: "📂 Список социальных проектов:\n\n",
		listLine:   "🔹 №%d | %s [%s]\n",
		listEmpty:  "Список проектов пуст",

		card: "📋 Карточка проекта №%d:\n\n" +
			"📌 Название: %s\n" +
			"⚠️ Проблема: %s\n" +
			"👤 Инициатор: %s\n" +
			"📅 Сроки: %s\n" +
			"🔄 Статус: %s\n" +
			"🛠 Исполнитель: %s",

		notFound:       "Проект №%d не найден",
		notAnInteger:   "Номер проекта должен быть целым числом.",
		unknownField:   "Поле не найдено. Доступно: %s",
		tooLong:        "Слишком длинное значение: не более %d символов.",
		fieldLabels: map[project.Field]string{
			project.FieldName:      "название",
			project.FieldProblem:   "проблема",
			project.FieldInitiator: "инициатор",
			project.FieldDeadline:  "сроки",
			project.FieldExecutor:  "исполнитель",
		},
		unknownCommand: "Неизвестная команда. Отправьте /start, чтобы увидеть список команд.",
		dashboard:      "📊 Аналитический дашборд доступен по ссылке: %s",

		usage: map[command.Keyword]string{
			command.KeywordAdd: "Ошибка ввода. Используйте формат:\n" +
				"/add Название, Проблема, Инициатор, Сроки\n" +
				"Пример: /add Парк Победы, Мусор на аллеях, Иванов А.А., 2025-05-01",
			command.KeywordUpdate: "Ошибка. Пример: /update 1, сроки, 2025-12-31",
			command.KeywordDelete: "Используйте: /delete номер_проекта",
			command.KeywordInfo:   "Используйте: /info номер_проекта",
			command.KeywordStatus: "Пример: /status 1, В работе",
			command.KeywordAssign: "Пример: /assign 1, Петров П.П.",
		},
	},
}

// ParseLocale validates a locale name. Empty selects English.
func ParseLocale(s string) (Locale, error) {
	switch l := Locale(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LocaleEN, nil
	case LocaleEN, LocaleRU:
		return l, nil
	default:
		return "", fmt.Errorf("unsupported locale %q", s)
	}
}

func (c *catalog) renderList(entries []project.Entry) string {
	if len(entries) == 0 {
		return c.listEmpty
	}
	var b strings.Builder
	b.WriteString(c.listHeader)
	for _, e := range entries {
		fmt.Fprintf(&b, c.listLine, e.ID, e.Project.Name, e.Project.Status)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (c *catalog) renderCard(id int, p project.Project) string {
	return fmt.Sprintf(c.card, id, p.Name, p.Problem, p.Initiator, p.Deadline, p.Status, p.Executor)
}

// renderUnknownField lists the /update field names in display order.
func (c *catalog) renderUnknownField() string {
	fields := project.UpdatableFields()
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = c.fieldLabels[f]
	}
	return fmt.Sprintf(c.unknownField, strings.Join(labels, ", "))
}

// renderParseError picks the message for one failure class.
func (c *catalog) renderParseError(perr *command.ParseError) string {
	switch perr.Kind {
	case command.KindUnknownField:
		return c.renderUnknownField()
	case command.KindTooLong:
		return fmt.Sprintf(c.tooLong, command.MaxValueLen)
	case command.KindUnknownCommand:
		return c.unknownCommand
	case command.KindNotAnInteger:
		return c.notAnInteger + "\n" + c.usage[perr.Keyword]
	default:
		return c.usage[perr.Keyword]
	}
}
