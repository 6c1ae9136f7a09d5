package identity

// disposable-style email domains
var defaultDomains = []string{
	"tempmail.com", "anonyme.fr", "idtemp.org", "mailtemp.fr", "fauxmail.com",
}

var defaultPlaceholders = []string{
	"/placeholder.svg",
	"https://source.unsplash.com/featured/?person",
	"https://source.unsplash.com/featured/?portrait",
	"https://source.unsplash.com/featured/?face",
	"https://source.unsplash.com/featured/?profile",
}

var positiveTraits = []string{
	"Ambitious", "Bold", "Charismatic", "Confident", "Creative", "Determined", "Disciplined", "Empathetic",
	"Energetic", "Enthusiastic", "Outgoing", "Generous", "Honest", "Humble", "Loyal", "Optimistic", "Patient",
	"Persevering", "Resilient", "Sociable",
}

var neutralTraits = []string{
	"Analytical", "Calm", "Conventional", "Curious", "Discreet", "Flexible", "Independent", "Introspective",
	"Logical", "Methodical", "Observant", "Pragmatic", "Cautious", "Thoughtful", "Reserved", "Skeptical",
	"Serious", "Spontaneous", "Stoic", "Traditional",
}

var negativeTraits = []string{
	"Anxious", "Arrogant", "Stubborn", "Cynical", "Defensive", "Distant", "Domineering", "Demanding", "Impulsive",
	"Indecisive", "Irritable", "Jealous", "Manipulative", "Obstinate", "Paranoid", "Perfectionist", "Pessimistic",
	"Possessive", "Resentful", "Touchy",
}

// negative traits join the eligible pool with this probability
const negativeTraitChance = 0.3

var occupations = []string{
	"software developer", "doctor", "lawyer", "engineer", "designer", "teacher", "chef",
	"entrepreneur", "accountant", "consultant", "artist", "researcher", "photographer", "architect", "pilot",
	"real estate agent", "journalist", "pharmacist", "digital marketer", "driver",
}

var educationLevels = []string{
	"high school diploma", "bachelor's degree", "master's degree", "doctorate", "vocational diploma",
	"technical diploma", "engineering degree", "business school degree", "associate degree",
	"professional certificate",
}

var languages = []string{
	"French", "English", "Spanish", "German", "Italian", "Portuguese", "Chinese", "Japanese",
	"Russian", "Arabic", "Hindi", "Dutch", "Greek", "Korean", "Swedish", "Polish",
}

var bloodTypes = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

type cardType struct {
	name    string
	pattern string
}

var cardTypes = []cardType{
	{"Visa", "4###############"},
	{"Mastercard", "5{12345}##############"},
	{"American Express", "3{47}#############"},
}

const (
	minAge = 18
	maxAge = 65

	minHeight = 150
	maxHeight = 200
	minWeight = 45
	maxWeight = 120

	minTraits    = 3
	maxTraits    = 5
	minLanguages = 1
	maxLanguages = 4

	fingerprintLen  = 32
	facialVectorLen = 128
	signatureLen    = 64
	maxStreetNumber = 100
	minExpiryYears  = 1
	maxExpiryYears  = 5
	dateLayout      = "2006-01-02"
)
