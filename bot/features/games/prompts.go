package games

var truthQuestions = []string{
	"What's the most embarrassing thing you've ever done?",
	"What's your biggest fear?",
	"Have you ever lied to your best friend?",
	"What's your most unusual talent?",
	"What's the worst gift you've ever received?",
	"Who was your first crush?",
	"What's something you've never told anyone?",
	"What's your guilty pleasure?",
}

var dareChallenges = []string{
	"Send a message in all caps for the next 5 messages",
	"Change your nickname to something silly for 10 minutes",
	"Share an embarrassing photo",
	"Do 10 pushups and post a video",
	"Speak in rhymes for the next 3 messages",
	"Tell a joke in the chat",
	"Compliment everyone online right now",
	"Share your most used emoji and explain why",
}

var wouldYouRather = []string{
	"Would you rather be able to fly or be invisible?",
	"Would you rather live in the past or the future?",
	"Would you rather have unlimited money or unlimited free time?",
	"Would you rather never use social media again or never watch a movie again?",
	"Would you rather be too hot or too cold?",
	"Would you rather fight 100 duck-sized horses or 1 horse-sized duck?",
	"Would you rather lose all your memories or never be able to make new ones?",
	"Would you rather have no internet or no phone?",
}

var neverHaveIEver = []string{
	"Never have I ever skipped school",
	"Never have I ever told a lie to get out of trouble",
	"Never have I ever stalked someone on social media",
	"Never have I ever pretended to be sick",
	"Never have I ever regifted something",
	"Never have I ever fallen asleep during a movie",
	"Never have I ever googled myself",
	"Never have I ever sent a text to the wrong person",
}

var eightBallAnswers = []string{
	"It is certain.", "Without a doubt.", "Yes, definitely.",
	"You may rely on it.", "As I see it, yes.", "Most likely.",
	"Outlook good.", "Yes.", "Signs point to yes.",
	"Reply hazy, try again.", "Ask again later.", "Better not tell you now.",
	"Cannot predict now.", "Concentrate and ask again.",
	"Don't count on it.", "My reply is no.", "My sources say no.",
	"Outlook not so good.", "Very doubtful.",
}
