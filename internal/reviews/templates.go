package reviews

// Sentiment tags carried by review templates. The closing-sentence logic and
// the summary's tone bands both use this vocabulary.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ReviewTemplate is one entry of the fixed synthesis corpus. Content carries
// %{genre}, %{actor} and %{director} placeholders.
type ReviewTemplate struct {
	Author    string
	Sentiment string
	RatingMin float64
	RatingMax float64
	Content   string
}

// reviewTemplates is the full synthesis corpus. Ratings are drawn uniformly
// from each template's sub-range so the tone of the text and the number on
// the review stay plausible together.
var reviewTemplates = []ReviewTemplate{
	{
		Author:    "FilmCritic42",
		Sentiment: SentimentPositive,
		RatingMin: 3.5,
		RatingMax: 5.0,
		Content:   "A masterpiece of %{genre} cinema. The direction is impeccable, and the performances, especially by %{actor}, are outstanding. The story flows naturally and keeps you engaged throughout its runtime.",
	},
	{
		Author:    "MovieBuff99",
		Sentiment: SentimentPositive,
		RatingMin: 4.0,
		RatingMax: 5.0,
		Content:   "One of the best %{genre} films I've seen in years. %{director}'s vision shines through in every scene. The cinematography is breathtaking, and the score perfectly complements the narrative.",
	},
	{
		Author:    "CinemaEnthusiast",
		Sentiment: SentimentPositive,
		RatingMin: 3.0,
		RatingMax: 4.5,
		Content:   "A solid %{genre} film that delivers what it promises. %{actor}'s performance is the highlight, bringing depth to an otherwise standard character. The pacing is good, though some scenes could have been tightened.",
	},
	{
		Author:    "ScreenTime",
		Sentiment: SentimentNeutral,
		RatingMin: 2.0,
		RatingMax: 3.5,
		Content:   "An average %{genre} movie with some memorable moments. The plot is somewhat predictable, but %{actor} manages to elevate the material. The direction by %{director} is competent if not particularly innovative.",
	},
	{
		Author:    "ReelReviewer",
		Sentiment: SentimentNegative,
		RatingMin: 1.5,
		RatingMax: 3.0,
		Content:   "A disappointing entry in the %{genre} category. Despite %{actor}'s best efforts, the script lacks coherence and the direction feels uninspired. Some good ideas get lost in the execution.",
	},
	{
		Author:    "FilmFanatic",
		Sentiment: SentimentPositive,
		RatingMin: 4.0,
		RatingMax: 5.0,
		Content:   "This film is a triumph of storytelling. %{director} has crafted a %{genre} masterpiece that will stand the test of time. The ensemble cast is excellent, with %{actor} delivering a career-best performance.",
	},
	{
		Author:    "MovieMaven",
		Sentiment: SentimentNeutral,
		RatingMin: 2.5,
		RatingMax: 4.0,
		Content:   "An interesting take on the %{genre} formula. While not perfect, the film offers enough fresh ideas to keep viewers engaged. %{actor}'s chemistry with the supporting cast is particularly noteworthy.",
	},
	{
		Author:    "CelluloidSage",
		Sentiment: SentimentNegative,
		RatingMin: 1.0,
		RatingMax: 2.5,
		Content:   "A frustrating misfire. This %{genre} film squanders its potential with poor pacing and underdeveloped characters. Even %{actor}'s talents can't save a script this flawed.",
	},
	{
		Author:    "ScreenSavvy",
		Sentiment: SentimentPositive,
		RatingMin: 3.0,
		RatingMax: 4.5,
		Content:   "A refreshing addition to the %{genre} canon. %{director} brings a unique perspective to familiar tropes, and the result is both entertaining and thought-provoking. %{actor} is perfectly cast in the lead role.",
	},
	{
		Author:    "FilmPhilosopher",
		Sentiment: SentimentPositive,
		RatingMin: 3.5,
		RatingMax: 5.0,
		Content:   "A nuanced and layered %{genre} film that rewards multiple viewings. %{director}'s attention to detail is evident in every frame, and %{actor} delivers a subtle, complex performance that anchors the narrative.",
	},
	{
		Author:    "MovieWatcher",
		Sentiment: SentimentNeutral,
		RatingMin: 2.0,
		RatingMax: 3.5,
		Content:   "While it has its moments, this %{genre} film never quite reaches its full potential. %{actor} does solid work, but the script gives them little to work with. The direction by %{director} is uneven.",
	},
	{
		Author:    "CinematicVision",
		Sentiment: SentimentPositive,
		RatingMin: 4.0,
		RatingMax: 5.0,
		Content:   "An instant classic in the %{genre} category. From the opening scene to the final frame, this film is a testament to %{director}'s skill as a storyteller. The entire cast shines, but %{actor} is the standout.",
	},
	{
		Author:    "ReelTalk",
		Sentiment: SentimentNegative,
		RatingMin: 1.0,
		RatingMax: 2.0,
		Content:   "A tedious and derivative %{genre} film that brings nothing new to the table. The talented %{actor} is wasted in a role that offers no challenges, and %{director}'s direction lacks energy and purpose.",
	},
	{
		Author:    "ScreenDreamer",
		Sentiment: SentimentNeutral,
		RatingMin: 3.0,
		RatingMax: 4.0,
		Content:   "A competent %{genre} film that hits all the expected notes without breaking new ground. %{actor} is well-cast and delivers a convincing performance, while %{director} keeps the story moving at a good pace.",
	},
	{
		Author:    "FilmAfficionado",
		Sentiment: SentimentPositive,
		RatingMin: 4.5,
		RatingMax: 5.0,
		Content:   "A remarkable achievement in %{genre} filmmaking. %{director} has created something truly special here, with stunning visuals and a compelling narrative. %{actor}'s performance is nothing short of revelatory.",
	},
}

// CorpusSize returns the number of templates available for synthesis.
func CorpusSize() int {
	return len(reviewTemplates)
}
