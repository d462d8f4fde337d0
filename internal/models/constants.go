package models

const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// Column limits of the leads table.
const (
	MaxFullNameLen = 100
	MaxEmailLen    = 100
	MaxPhoneLen    = 20
	MaxInterestLen = 100
)

const (
	// LeadsTable имя таблицы лидов
	LeadsTable = "leads"

	// DefaultMaxRetries количество попыток подключения к БД
	DefaultMaxRetries = 3

	// DefaultRetryDelay пауза между попытками подключения, в секундах
	DefaultRetryDelay = 2

	// DefaultConnectTimeout таймаут установки соединения, в секундах
	DefaultConnectTimeout = 10

	// DefaultSubmissionWindow окно ограничения отправки формы, в секундах
	DefaultSubmissionWindow = 60

	// ServiceName имя сервиса в ответе health-check
	ServiceName = "LeadTracker API"
)

// DefaultInterests is the list of services offered in the registration form.
var DefaultInterests = []string{
	"Consultoría Tecnológica",
	"Desarrollo de Software",
	"Marketing Digital",
	"Análisis de Datos",
	"Transformación Digital",
	"Soporte Técnico",
}
