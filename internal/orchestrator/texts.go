package orchestrator

import "github.com/yojanamitra-core/server/internal/model"

// User-visible fallback texts. Always phrased as an actionable next step,
// never as a raw error code.

var throttleTexts = map[model.Language]string{
	model.LangEnglish:  "You have sent a lot of requests in a short time. Please wait a few minutes and try again.",
	model.LangHindi:    "आपने कम समय में बहुत सारे अनुरोध भेजे हैं। कृपया कुछ मिनट रुककर फिर से प्रयास करें।",
	model.LangHinglish: "Aapne thodi der mein bahut saare requests bheje hain. Kripya kuch minute ruk kar dobara try karein.",
}

var apologyTexts = map[model.Language]string{
	model.LangEnglish:  "Sorry, I could not prepare a detailed answer right now. Please try again in a little while, or ask about a specific scheme by name.",
	model.LangHindi:    "क्षमा करें, अभी विस्तृत उत्तर तैयार नहीं हो सका। कृपया थोड़ी देर बाद फिर से पूछें, या किसी योजना का नाम लेकर पूछें।",
	model.LangHinglish: "Maaf kijiye, abhi detailed jawab tayyar nahi ho paya. Thodi der baad dobara try karein, ya kisi scheme ka naam lekar poochhein.",
}

var clarificationTexts = map[model.Language]string{
	model.LangEnglish:  "I could not find a matching scheme for that. Could you share a bit more — for example your age, education, state, or whether you are looking for a scholarship, internship, job or training?",
	model.LangHindi:    "मुझे इसके लिए कोई मेल खाती योजना नहीं मिली। कृपया थोड़ा और बताएं — जैसे आपकी उम्र, शिक्षा, राज्य, या आप छात्रवृत्ति, इंटर्नशिप, नौकरी या प्रशिक्षण में से क्या ढूंढ रहे हैं?",
	model.LangHinglish: "Mujhe iske liye koi matching scheme nahi mili. Thoda aur bataiye — jaise aapki age, education, state, ya aap scholarship, internship, naukri ya training mein se kya dhoondh rahe hain?",
}

func textFor(texts map[model.Language]string, lang model.Language) string {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[model.LangEnglish]
}
