package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	UUID                  uuid.UUID `gorm:"type:char(36);primarykey" json:"id"`
	Email                 string    `gorm:"column:email;uniqueIndex;size:191;not null" json:"email"`
	FullName              *string   `gorm:"column:full_name" json:"fullName"`
	Location              *string   `gorm:"column:location" json:"location"`
	GraduationYear        *int      `gorm:"column:graduation_year" json:"graduationYear"`
	LinkedinURL           *string   `gorm:"column:linkedin_url" json:"linkedinUrl"`
	PersonalWebsite       *string   `gorm:"column:personal_website" json:"personalWebsite"`
	ProfileImage          *string   `gorm:"column:profile_image" json:"profileImage"`
	Bio                   *string   `gorm:"column:bio;type:text" json:"bio"`
	CurrentRole           *string   `gorm:"column:current_role" json:"currentRole"`
	CurrentCompany        *string   `gorm:"column:current_company;index" json:"currentCompany"`
	OpenToCoffeeChats     bool      `gorm:"column:open_to_coffee_chats;default:false" json:"openToCoffeeChats"`
	OpenToMentorship      bool      `gorm:"column:open_to_mentorship;default:false" json:"openToMentorship"`
	AvailableForReferrals bool      `gorm:"column:available_for_referrals;default:false" json:"availableForReferrals"`
	IsAlumni              bool      `gorm:"column:is_alumni;default:false" json:"isAlumni"`
	IsAdmin               bool      `gorm:"column:is_admin;default:false" json:"-"`
	ProfileCompleted      bool      `gorm:"column:profile_completed;default:false" json:"profileCompleted"`
	ProfileVisible        bool      `gorm:"column:profile_visible;default:false" json:"profileVisible"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
	PassWord              string    `gorm:"column:password" json:"-"`
}

// Email 用户联系邮箱，全局唯一，每个用户最多一条preferred记录
type Email struct {
	Email     string    `gorm:"column:email;primarykey;size:191" json:"email"`
	UserUUID  uuid.UUID `gorm:"column:user_uuid;type:char(36);index;not null" json:"userId"`
	Preferred bool      `gorm:"column:preferred;default:false" json:"preferred"`
	CreatedAt time.Time `json:"createdAt"`
}

// Company 公司，以名称为主键，由就职/面试记录按需创建
type Company struct {
	Name      string    `gorm:"column:name;primarykey;size:191" json:"name"`
	LogoURL   *string   `gorm:"column:logo_url" json:"logoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Employment 就职记录，End为空表示在职，在职记录会同步User.CurrentCompany
type Employment struct {
	UUID        uuid.UUID  `gorm:"type:char(36);primarykey" json:"id"`
	UserUUID    uuid.UUID  `gorm:"column:user_uuid;type:char(36);index;not null" json:"userId"`
	CompanyName string     `gorm:"column:company_name;size:191;not null" json:"companyName"`
	Type        string     `gorm:"column:type;size:20;not null" json:"type"`
	Start       time.Time  `gorm:"column:start" json:"start"`
	End         *time.Time `gorm:"column:end" json:"end"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Interview 面试记录，独立历史数据，不影响其他表
type Interview struct {
	UUID        uuid.UUID `gorm:"type:char(36);primarykey" json:"id"`
	UserUUID    uuid.UUID `gorm:"column:user_uuid;type:char(36);index;not null" json:"userId"`
	CompanyName string    `gorm:"column:company_name;size:191;not null" json:"companyName"`
	Role        string    `gorm:"column:role" json:"role"`
	Season      string    `gorm:"column:season;size:20" json:"season"`
	Passed      bool      `gorm:"column:passed;default:false" json:"passed"`
	Note        string    `gorm:"column:note;type:text" json:"note"`
	Date        time.Time `gorm:"column:date" json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Request 待处理的连接请求
// PairKey是(requester, requested)无序对的规范化键，唯一索引保证
// 同一对用户之间任意方向最多一条待处理请求，反向检测不依赖请求顺序
type Request struct {
	UUID          uuid.UUID `gorm:"type:char(36);primarykey" json:"id"`
	RequesterUUID uuid.UUID `gorm:"column:requester_uuid;type:char(36);index;not null" json:"requesterId"`
	RequestedUUID uuid.UUID `gorm:"column:requested_uuid;type:char(36);index;not null" json:"requestedId"`
	Message       string    `gorm:"column:message;type:text" json:"message"`
	PairKey       string    `gorm:"column:pair_key;size:80;uniqueIndex" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	r.PairKey = PairKey(r.RequesterUUID, r.RequestedUUID)
	return nil
}

// CompletedRequest 已接受的连接，不可变台账，唯一索引防止同一对重复入账
type CompletedRequest struct {
	UUID          uuid.UUID `gorm:"type:char(36);primarykey" json:"id"`
	RequesterUUID uuid.UUID `gorm:"column:requester_uuid;type:char(36);index;not null" json:"requesterId"`
	RequestedUUID uuid.UUID `gorm:"column:requested_uuid;type:char(36);index;not null" json:"requestedId"`
	PairKey       string    `gorm:"column:pair_key;size:80;uniqueIndex" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *CompletedRequest) BeforeCreate(tx *gorm.DB) error {
	r.PairKey = PairKey(r.RequesterUUID, r.RequestedUUID)
	return nil
}

// PairKey 把两个用户UUID按字典序拼成无序对的规范化键
func PairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if as > bs {
		as, bs = bs, as
	}
	return as + "|" + bs
}
