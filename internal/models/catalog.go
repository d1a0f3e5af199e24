package models

const assetDir = "assets/sounds/"

var defaultSongs = []Song{
	{ID: "1", Title: "What a Wonderful World", Artist: "Louis Armstrong", Album: "Single", Duration: 136, Genre: "Jazz", Year: 1967,
		URI: assetDir + "Louis_Armstrong_-_What_A_Wonderful_World.mp3", Mood: []string{"happy", "nostalgic", "relaxing"}},
	{ID: "2", Title: "Somewhere Over the Rainbow", Artist: "Ronnie Booth", Album: "Classic Collection", Duration: 177, Genre: "Classic", Year: 1939,
		URI: assetDir + "Ronnie_Booth_-_Somewhere_Over_The_Rainbow.mp3", Mood: []string{"nostalgic", "relaxing"}},
	{ID: "3", Title: "Moon River", Artist: "JJ Heller", Album: "Classics Collection", Duration: 224, Genre: "Vocal", Year: 2020,
		URI: assetDir + "JJ_Heller_-_Moon_River.mp3", Mood: []string{"nostalgic", "relaxing"}},
	{ID: "4", Title: "Calm", Artist: "Victor Thompson", Album: "Worship Sessions", Duration: 189, Genre: "Gospel", Year: 2020,
		URI: assetDir + "Victor_Thompson_-_Calm.mp3", Mood: []string{"relaxing", "spiritual"}},
	{ID: "5", Title: "The Calm", Artist: "7 Hills Worship", Album: "Worship Experience", Duration: 183, Genre: "Gospel", Year: 2021,
		URI: assetDir + "7_Hills_Worship_-_The_Calm.mp3", Mood: []string{"relaxing", "spiritual"}},
	{ID: "6", Title: "Happy", Artist: "Guardian Angel", Album: "Single", Duration: 203, Genre: "Afrobeats", Year: 2020,
		URI: assetDir + "Guardian_Angel_-_Happy.mp3", Mood: []string{"happy", "upbeat"}},
	{ID: "7", Title: "Happy Place", Artist: "Esther Oji", Album: "Single", Duration: 152, Genre: "Afrobeats", Year: 2021,
		URI: assetDir + "Esther_Oji_-_Happy_Place.mp3", Mood: []string{"happy", "upbeat"}},
	{ID: "8", Title: "Happy", Artist: "Daphne", Album: "Single", Duration: 183, Genre: "Afrobeats", Year: 2019,
		URI: assetDir + "Daphne_-_Happy.mp3", Mood: []string{"happy", "upbeat"}},
	{ID: "9", Title: "Nostalgic", Artist: "Alvin Cedric", Album: "Memories", Duration: 171, Genre: "R&B", Year: 2020,
		URI: assetDir + "Alvin_Cedric_-_Nostalgic.mp3", Mood: []string{"nostalgic", "emotional"}},
	{ID: "10", Title: "Relax", Artist: "Christina Shusho", Album: "Peace Sessions", Duration: 172, Genre: "Gospel", Year: 2020,
		URI: assetDir + "Christina_Shusho_-_Relax.mp3", Mood: []string{"relaxing", "spiritual"}},
	{ID: "11", Title: "Relax", Artist: "Marvin Sapp", Album: "Single", Duration: 193, Genre: "Gospel", Year: 2019,
		URI: assetDir + "Marvin_Sapp_-_Relax.mp3", Mood: []string{"relaxing", "spiritual"}},
	{ID: "12", Title: "I'm So Sad", Artist: "Gnash", Album: "Emotional", Duration: 120, Genre: "Pop", Year: 2018,
		URI: assetDir + "Gnash_-_Im_So_Sad.mp3", Mood: []string{"sad", "emotional"}},
	{ID: "13", Title: "Sad", Artist: "BOBO W", Album: "Feelings", Duration: 229, Genre: "Afrobeats", Year: 2020,
		URI: assetDir + "BOBO_W_-_Sad.mp3", Mood: []string{"sad", "emotional"}},
	{ID: "14", Title: "Too Sad To Cry", Artist: "Sasha Sloan", Album: "Emotions", Duration: 135, Genre: "Pop", Year: 2019,
		URI: assetDir + "Sasha_Sloan_-_Too_Sad_To_Cry.mp3", Mood: []string{"sad", "emotional"}},
	{ID: "15", Title: "Let Me Be Sad", Artist: "I Prevail", Album: "Single", Duration: 139, Genre: "Rock", Year: 2020,
		URI: assetDir + "I_Prevail_-_Let_Me_Be_Sad.mp3", Mood: []string{"sad", "emotional"}},
}

// DefaultSongs returns a deep copy of the bundled catalog used to seed an empty song cache.
func DefaultSongs() []Song {
	out := make([]Song, len(defaultSongs))
	for i, s := range defaultSongs {
		s.Mood = append([]string(nil), s.Mood...)
		out[i] = s
	}
	return out
}
