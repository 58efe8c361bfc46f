package rbac_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quickmark/qr-management/internal/rbac"
)

var _ = Describe("Role permissions", func() {
	Describe("HasPermission", func() {
		It("grants every catalog permission to the wildcard role", func() {
			for _, perms := range rbac.PermissionCatalog() {
				for _, p := range perms {
					Expect(rbac.HasPermission(rbac.RoleSuperAdmin, p.Key)).To(BeTrue(),
						"superAdmin should hold %s", p.Key)
				}
			}
		})

		It("grants the wildcard role even permissions outside the catalog", func() {
			Expect(rbac.HasPermission(rbac.RoleSuperAdmin, "made.up")).To(BeTrue())
		})

		It("grants non-wildcard roles exactly their listed permissions", func() {
			for _, roleKey := range []string{rbac.RoleAdmin, rbac.RoleEditor, rbac.RoleViewer, rbac.RoleGuest} {
				listed := make(map[string]bool)
				for _, p := range rbac.RolePermissions(roleKey) {
					listed[p] = true
				}
				for _, perms := range rbac.PermissionCatalog() {
					for _, p := range perms {
						Expect(rbac.HasPermission(roleKey, p.Key)).To(Equal(listed[p.Key]),
							"%s / %s", roleKey, p.Key)
					}
				}
			}
		})

		It("denies everything to unknown roles", func() {
			Expect(rbac.HasPermission("warlord", "qr.view")).To(BeFalse())
		})

		It("does not prefix-match permission namespaces", func() {
			Expect(rbac.HasPermission(rbac.RoleViewer, "qr")).To(BeFalse())
			Expect(rbac.HasPermission(rbac.RoleViewer, "qr.view.extra")).To(BeFalse())
		})
	})

	Describe("RoleHierarchy", func() {
		It("orders roles by descending authority", func() {
			hierarchy := rbac.RoleHierarchy()
			Expect(hierarchy).To(HaveLen(5))
			Expect(hierarchy[0].Key).To(Equal(rbac.RoleSuperAdmin))
			Expect(hierarchy[4].Key).To(Equal(rbac.RoleGuest))
			for i := 1; i < len(hierarchy); i++ {
				Expect(hierarchy[i-1].Level).To(BeNumerically(">", hierarchy[i].Level))
			}
		})
	})

	Describe("PermissionCatalog", func() {
		It("groups permissions by category", func() {
			grouped := rbac.PermissionCatalog()
			Expect(grouped).To(HaveKey("qr"))
			Expect(grouped).To(HaveKey("users"))
			Expect(grouped["qr"]).To(HaveLen(4))
		})
	})

	Describe("CanManageUser", func() {
		It("requires strictly higher authority", func() {
			Expect(rbac.CanManageUser(1, 2, rbac.RoleAdmin, rbac.RoleEditor)).To(BeTrue())
			Expect(rbac.CanManageUser(1, 2, rbac.RoleAdmin, rbac.RoleAdmin)).To(BeFalse())
			Expect(rbac.CanManageUser(1, 2, rbac.RoleEditor, rbac.RoleAdmin)).To(BeFalse())
		})

		It("always refuses self-management", func() {
			Expect(rbac.CanManageUser(1, 1, rbac.RoleSuperAdmin, rbac.RoleViewer)).To(BeFalse())
		})

		It("refuses unknown roles on either side", func() {
			Expect(rbac.CanManageUser(1, 2, "warlord", rbac.RoleViewer)).To(BeFalse())
			Expect(rbac.CanManageUser(1, 2, rbac.RoleAdmin, "warlord")).To(BeFalse())
		})
	})
})
