package userdata

// PhraseUpdate carries the fields to merge into an existing phrase. Nil
// fields are left untouched.
type PhraseUpdate struct {
	Text            *string
	SelectedImageID *int
}

// SetPhraseImage replaces the image of a phrase. A nil imageID clears it.
func SetPhraseImage(d UserData, phraseID string, imageID *int) (UserData, error) {
	i := d.phraseIndex(phraseID)
	if i < 0 {
		return d, reject("set phrase image", ErrPhraseNotFound)
	}
	out := d.Clone()
	if imageID == nil {
		out.Phrases[i].SelectedImageID = nil
	} else {
		out.Phrases[i].SelectedImageID = ImageID(*imageID)
	}
	return out, nil
}

// AddPhrase prepends a custom phrase. Callers validate the text and image
// before calling; the store accepts whatever it is given.
func AddPhrase(d UserData, phrase Phrase) UserData {
	out := d.Clone()
	phrase = phrase.clone()
	phrase.IsCustom = true
	out.Phrases = append([]Phrase{phrase}, out.Phrases...)
	return out
}

// UpdatePhrase merges the non-nil fields of update into the phrase.
func UpdatePhrase(d UserData, phraseID string, update PhraseUpdate) (UserData, error) {
	i := d.phraseIndex(phraseID)
	if i < 0 {
		return d, reject("update phrase", ErrPhraseNotFound)
	}
	out := d.Clone()
	if update.Text != nil {
		out.Phrases[i].Text = *update.Text
	}
	if update.SelectedImageID != nil {
		out.Phrases[i].SelectedImageID = ImageID(*update.SelectedImageID)
	}
	return out, nil
}

// DeletePhrase removes a custom phrase. Seeded phrases cannot be removed.
func DeletePhrase(d UserData, phraseID string) (UserData, error) {
	i := d.phraseIndex(phraseID)
	if i < 0 {
		return d, reject("delete phrase", ErrPhraseNotFound)
	}
	if !d.Phrases[i].IsCustom {
		return d, reject("delete phrase", ErrPhraseNotCustom)
	}
	out := d.Clone()
	out.Phrases = append(out.Phrases[:i], out.Phrases[i+1:]...)
	return out, nil
}

// SetPhrasePublic records whether the phrase is shared with the community.
func SetPhrasePublic(d UserData, phraseID string, public bool) (UserData, error) {
	i := d.phraseIndex(phraseID)
	if i < 0 {
		return d, reject("set phrase public", ErrPhraseNotFound)
	}
	out := d.Clone()
	out.Phrases[i].IsPublic = public
	return out, nil
}
