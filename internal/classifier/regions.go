package classifier

// Region names as the gazette prints them.
const (
	regionAndalucia        = "Andalucía"
	regionAragon           = "Aragón"
	regionAsturias         = "Principado de Asturias"
	regionBaleares         = "Illes Balears"
	regionCanarias         = "Canarias"
	regionCantabria        = "Cantabria"
	regionCastillaLeon     = "Castilla y León"
	regionCastillaLaMancha = "Castilla-La Mancha"
	regionCataluna         = "Cataluña"
	regionValenciana       = "Comunitat Valenciana"
	regionExtremadura      = "Extremadura"
	regionGalicia          = "Galicia"
	regionMadrid           = "Comunidad de Madrid"
	regionMurcia           = "Región de Murcia"
	regionNavarra          = "Comunidad Foral de Navarra"
	regionPaisVasco        = "País Vasco"
	regionRioja            = "La Rioja"
	regionCeuta            = "Ceuta"
	regionMelilla          = "Melilla"
)

type province struct {
	name   string
	region string
}

// provinces is keyed by normalized spelling, including the co-official
// variants that appear in local announcements.
var provinces = map[string]province{
	"a coruna":               {"A Coruña", regionGalicia},
	"la coruna":              {"A Coruña", regionGalicia},
	"lugo":                   {"Lugo", regionGalicia},
	"ourense":                {"Ourense", regionGalicia},
	"orense":                 {"Ourense", regionGalicia},
	"pontevedra":             {"Pontevedra", regionGalicia},
	"asturias":               {"Asturias", regionAsturias},
	"cantabria":              {"Cantabria", regionCantabria},
	"araba":                  {"Araba/Álava", regionPaisVasco},
	"alava":                  {"Araba/Álava", regionPaisVasco},
	"araba alava":            {"Araba/Álava", regionPaisVasco},
	"bizkaia":                {"Bizkaia", regionPaisVasco},
	"vizcaya":                {"Bizkaia", regionPaisVasco},
	"gipuzkoa":               {"Gipuzkoa", regionPaisVasco},
	"guipuzcoa":              {"Gipuzkoa", regionPaisVasco},
	"navarra":                {"Navarra", regionNavarra},
	"la rioja":               {"La Rioja", regionRioja},
	"huesca":                 {"Huesca", regionAragon},
	"teruel":                 {"Teruel", regionAragon},
	"zaragoza":               {"Zaragoza", regionAragon},
	"barcelona":              {"Barcelona", regionCataluna},
	"girona":                 {"Girona", regionCataluna},
	"gerona":                 {"Girona", regionCataluna},
	"lleida":                 {"Lleida", regionCataluna},
	"lerida":                 {"Lleida", regionCataluna},
	"tarragona":              {"Tarragona", regionCataluna},
	"illes balears":          {"Illes Balears", regionBaleares},
	"islas baleares":         {"Illes Balears", regionBaleares},
	"baleares":               {"Illes Balears", regionBaleares},
	"alicante":               {"Alicante/Alacant", regionValenciana},
	"alacant":                {"Alicante/Alacant", regionValenciana},
	"alicante alacant":       {"Alicante/Alacant", regionValenciana},
	"castellon":              {"Castellón/Castelló", regionValenciana},
	"castello":               {"Castellón/Castelló", regionValenciana},
	"castellon castello":     {"Castellón/Castelló", regionValenciana},
	"valencia":               {"Valencia/València", regionValenciana},
	"valencia valencia":      {"Valencia/València", regionValenciana},
	"murcia":                 {"Murcia", regionMurcia},
	"madrid":                 {"Madrid", regionMadrid},
	"avila":                  {"Ávila", regionCastillaLeon},
	"burgos":                 {"Burgos", regionCastillaLeon},
	"leon":                   {"León", regionCastillaLeon},
	"palencia":               {"Palencia", regionCastillaLeon},
	"salamanca":              {"Salamanca", regionCastillaLeon},
	"segovia":                {"Segovia", regionCastillaLeon},
	"soria":                  {"Soria", regionCastillaLeon},
	"valladolid":             {"Valladolid", regionCastillaLeon},
	"zamora":                 {"Zamora", regionCastillaLeon},
	"albacete":               {"Albacete", regionCastillaLaMancha},
	"ciudad real":            {"Ciudad Real", regionCastillaLaMancha},
	"cuenca":                 {"Cuenca", regionCastillaLaMancha},
	"guadalajara":            {"Guadalajara", regionCastillaLaMancha},
	"toledo":                 {"Toledo", regionCastillaLaMancha},
	"badajoz":                {"Badajoz", regionExtremadura},
	"caceres":                {"Cáceres", regionExtremadura},
	"almeria":                {"Almería", regionAndalucia},
	"cadiz":                  {"Cádiz", regionAndalucia},
	"cordoba":                {"Córdoba", regionAndalucia},
	"granada":                {"Granada", regionAndalucia},
	"huelva":                 {"Huelva", regionAndalucia},
	"jaen":                   {"Jaén", regionAndalucia},
	"malaga":                 {"Málaga", regionAndalucia},
	"sevilla":                {"Sevilla", regionAndalucia},
	"las palmas":             {"Las Palmas", regionCanarias},
	"santa cruz de tenerife": {"Santa Cruz de Tenerife", regionCanarias},
	"tenerife":               {"Santa Cruz de Tenerife", regionCanarias},
	"ceuta":                  {"Ceuta", regionCeuta},
	"melilla":                {"Melilla", regionMelilla},
}

// regionAliases is matched against normalized department names in order, so
// longer aliases come before any alias they contain.
var regionAliases = []struct {
	alias  string
	region string
}{
	{"castilla la mancha", regionCastillaLaMancha},
	{"castilla y leon", regionCastillaLeon},
	{"andalucia", regionAndalucia},
	{"aragon", regionAragon},
	{"principado de asturias", regionAsturias},
	{"asturias", regionAsturias},
	{"illes balears", regionBaleares},
	{"islas baleares", regionBaleares},
	{"canarias", regionCanarias},
	{"cantabria", regionCantabria},
	{"cataluna", regionCataluna},
	{"catalunya", regionCataluna},
	{"comunitat valenciana", regionValenciana},
	{"comunidad valenciana", regionValenciana},
	{"generalitat valenciana", regionValenciana},
	{"extremadura", regionExtremadura},
	{"galicia", regionGalicia},
	{"xunta", regionGalicia},
	{"comunidad de madrid", regionMadrid},
	{"region de murcia", regionMurcia},
	{"comunidad foral de navarra", regionNavarra},
	{"navarra", regionNavarra},
	{"pais vasco", regionPaisVasco},
	{"euskadi", regionPaisVasco},
	{"la rioja", regionRioja},
	{"ciudad de ceuta", regionCeuta},
	{"ciudad de melilla", regionMelilla},
	{"ceuta", regionCeuta},
	{"melilla", regionMelilla},
}
