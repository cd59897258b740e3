package model

import "errors"

// ErrNotParty возвращается если пользователь не участник слота
var ErrNotParty = errors.New("user is not a party to the slot")

// PartyRef - ссылка на вторую сторону занятия
type PartyRef struct {
	ID        int64
	FirstName string
	LastName  string
}

// Viewpoint - взгляд на слот одной из сторон.
// Реализации: StudentView и TutorView.
type Viewpoint interface {
	Role() Role
	Self() Identity
	// Counterpart возвращает вторую сторону; ok=false если её нет (слот свободен)
	Counterpart() (PartyRef, bool)
	viewpoint()
}

// StudentView - слот глазами студента, вторая сторона всегда репетитор
type StudentView struct {
	Me    Identity
	Tutor PartyRef
}

func (v StudentView) Role() Role                    { return RoleStudent }
func (v StudentView) Self() Identity                { return v.Me }
func (v StudentView) Counterpart() (PartyRef, bool) { return v.Tutor, true }
func (StudentView) viewpoint()                      {}

// TutorView - слот глазами репетитора, студента может ещё не быть
type TutorView struct {
	Me      Identity
	Student *PartyRef
}

func (v TutorView) Role() Role     { return RoleTutor }
func (v TutorView) Self() Identity { return v.Me }
func (v TutorView) Counterpart() (PartyRef, bool) {
	if v.Student == nil {
		return PartyRef{}, false
	}
	return *v.Student, true
}
func (TutorView) viewpoint() {}

// ResolveViewpoint один раз определяет, кем пользователь приходится слоту
func ResolveViewpoint(me Identity, slot *Slot) (Viewpoint, error) {
	switch me.Role {
	case RoleTutor:
		if slot.TutorID != me.ID {
			return nil, ErrNotParty
		}
		view := TutorView{Me: me}
		if slot.StudentID != nil {
			ref := PartyRef{ID: *slot.StudentID}
			if slot.Student != nil {
				ref.FirstName = slot.Student.FirstName
				ref.LastName = slot.Student.LastName
			}
			view.Student = &ref
		}
		return view, nil
	case RoleStudent:
		if slot.StudentID == nil || *slot.StudentID != me.ID {
			return nil, ErrNotParty
		}
		ref := PartyRef{ID: slot.TutorID}
		if slot.Tutor != nil {
			ref.FirstName = slot.Tutor.FirstName
			ref.LastName = slot.Tutor.LastName
		}
		return StudentView{Me: me, Tutor: ref}, nil
	}
	return nil, ErrNotParty
}
