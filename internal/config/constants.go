package config

// Application constants
const (
	AppName = "fuelbreak"

	// EnvPrefix namespaces every environment variable, e.g. FUELBREAK_INPUT_FILE.
	EnvPrefix = "FUELBREAK"

	// DefaultCutoff is the date Petrobras abandoned import-parity pricing.
	DefaultCutoff = "2023-05-01"
	DateLayout    = "2006-01-02"

	DefaultInputFile = "dados_tcc_historico.xlsx"
	DefaultOutputDir = "output"
	DefaultLogsDir   = "logs"

	FiguresSubdir = "figures"
	TablesSubdir  = "tables"

	ManifestFileName     = "manifest.json"
	ModelsFileName       = "models.json"
	WorkbookFileName     = "tables.xlsx"
	ObservationsFileName = "observations.csv"
)

// Supported image formats for charts and tables.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)
